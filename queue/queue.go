// Package queue implements the token queue: the "instruction stream yet to
// execute". It has two physical forms - a genuine, owned FIFO the evaluator
// mutates, and a borrowed cursor over a stored definition body - unified
// behind one type so the evaluator never has to know which one it holds.
package queue

import "github.com/skx/clacjit/token"

// form tags which physical representation a Queue currently holds.
type form int

const (
	// none is a transient placeholder used only while ownership of a
	// queue's backing storage is being moved to another Queue value. The
	// evaluator must never observe a Queue in this form.
	none form = iota
	owned
	borrowed
)

// Queue is the FIFO of tokens still to be executed. The zero value is in
// the transient none form: PushBack turns it into an owned queue, and
// PopFront on it panics. New returns an empty owned queue.
type Queue struct {
	kind   form
	buf    []token.Token // owned: a plain growable slice
	head   int           // owned: index of the next token to pop
	cursor []token.Token // borrowed: the body being iterated
	at     int           // borrowed: index of the next token to yield
}

// New returns a new, empty, owned queue.
func New() *Queue {
	return &Queue{kind: owned}
}

// Over returns a borrowed cursor over body. body must outlive the cursor;
// callers satisfy this by only ever borrowing bodies stored in a definition
// table that lives for the process lifetime.
func Over(body []token.Token) *Queue {
	return &Queue{kind: borrowed, cursor: body}
}

// PushBack appends a token to the tail of an owned queue. It panics if
// called on a borrowed cursor - definition bodies are immutable once
// captured, and the evaluator never attempts to push to one.
func (q *Queue) PushBack(t token.Token) {
	if q.kind == borrowed {
		panic("queue: push on a borrowed cursor")
	}
	if q.kind == none {
		q.kind = owned
	}
	q.buf = append(q.buf, t)
}

// PopFront removes and returns the head token. ok is false once the queue is
// exhausted.
func (q *Queue) PopFront() (t token.Token, ok bool) {
	switch q.kind {
	case owned:
		if q.head >= len(q.buf) {
			return t, false
		}
		t = q.buf[q.head]
		q.head++
		if q.head == len(q.buf) {
			// Nothing left to borrow a reference into; reclaim the
			// backing array so a long-running owned queue doesn't
			// retain memory for tokens already consumed.
			q.buf = nil
			q.head = 0
		}
		return t, true
	case borrowed:
		if q.at >= len(q.cursor) {
			return t, false
		}
		t = q.cursor[q.at]
		q.at++
		return t, true
	default:
		panic("queue: pop on unobserved placeholder")
	}
}

// IsEmpty reports whether no tokens remain.
func (q *Queue) IsEmpty() bool {
	switch q.kind {
	case owned:
		return q.head >= len(q.buf)
	case borrowed:
		return q.at >= len(q.cursor)
	default:
		return true
	}
}

// Take transfers this queue's contents to the caller, leaving the receiver
// in the transient none form. The evaluator uses this to move the caller's
// queue onto the return stack without copying it.
func (q *Queue) Take() *Queue {
	taken := &Queue{kind: q.kind, buf: q.buf, head: q.head, cursor: q.cursor, at: q.at}
	q.kind = none
	q.buf = nil
	q.cursor = nil
	return taken
}
