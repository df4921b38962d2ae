package queue

import (
	"testing"

	"github.com/skx/clacjit/token"
)

func TestOwnedPushPop(t *testing.T) {
	q := New()
	if !q.IsEmpty() {
		t.Fatalf("new queue should be empty")
	}
	q.PushBack(token.Int32(1))
	q.PushBack(token.Int32(2))

	v, ok := q.PopFront()
	if !ok || v.Value != 1 {
		t.Fatalf("PopFront() = %v, %v, want 1, true", v, ok)
	}
	v, ok = q.PopFront()
	if !ok || v.Value != 2 {
		t.Fatalf("PopFront() = %v, %v, want 2, true", v, ok)
	}
	if !q.IsEmpty() {
		t.Fatalf("queue should be drained")
	}
	if _, ok := q.PopFront(); ok {
		t.Fatalf("PopFront() on an empty queue should fail")
	}
}

func TestBorrowedCursor(t *testing.T) {
	body := []token.Token{token.Int32(1), token.Word(token.Plus)}
	q := Over(body)

	v, ok := q.PopFront()
	if !ok || v.Value != 1 {
		t.Fatalf("PopFront() = %v, %v, want 1, true", v, ok)
	}
	v, ok = q.PopFront()
	if !ok || v.Kind != token.Plus {
		t.Fatalf("PopFront() = %v, %v, want Plus, true", v, ok)
	}
	if !q.IsEmpty() {
		t.Fatalf("cursor should be exhausted")
	}
}

func TestBorrowedPushPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected push on a borrowed cursor to panic")
		}
	}()
	Over(nil).PushBack(token.Int32(1))
}

func TestTake(t *testing.T) {
	q := New()
	q.PushBack(token.Int32(7))

	taken := q.Take()
	if !q.IsEmpty() {
		t.Fatalf("source queue should report empty after Take")
	}
	v, ok := taken.PopFront()
	if !ok || v.Value != 7 {
		t.Fatalf("taken queue lost its contents")
	}
}
