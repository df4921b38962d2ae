package stack

import "testing"

func TestEmpty(t *testing.T) {
	s := New[int32]()
	if !s.Empty() {
		t.Errorf("new stack is not empty")
	}
	s.Push(33)
	if s.Empty() {
		t.Errorf("despite storing a value the stack is still empty")
	}
}

func TestEmptyPop(t *testing.T) {
	s := New[int32]()
	if _, ok := s.Pop(); ok {
		t.Errorf("expected pop from an empty stack to fail")
	}
}

func TestPushPop(t *testing.T) {
	s := New[int32]()
	s.Push(33)

	v, ok := s.Pop()
	if !ok {
		t.Fatalf("expected pop to succeed")
	}
	if v != 33 {
		t.Errorf("got %d, want 33", v)
	}
}

func TestPick(t *testing.T) {
	s := New[int32]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	if v, ok := s.Pick(0); !ok || v != 3 {
		t.Errorf("Pick(0) = %d, %v, want 3, true", v, ok)
	}
	if v, ok := s.Pick(2); !ok || v != 1 {
		t.Errorf("Pick(2) = %d, %v, want 1, true", v, ok)
	}
	if _, ok := s.Pick(3); ok {
		t.Errorf("Pick(3) should be out of range")
	}
	if _, ok := s.Pick(-1); ok {
		t.Errorf("Pick(-1) should be invalid")
	}
}

func TestString(t *testing.T) {
	s := New[int32]()
	s.Push(1)
	s.Push(2)
	s.Push(3)
	if got, want := s.String(), "1 2 3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
