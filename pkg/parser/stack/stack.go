package stack

// Stack is a LIFO used for parser symbols and the semantic node stack.
type Stack[T any] struct {
	a []T
}

// NewStack creates a new stack holding elm, last element on top
func NewStack[T any](elm ...T) *Stack[T] {
	s := &Stack[T]{a: make([]T, 0, len(elm))}
	s.a = append(s.a, elm...)
	return s
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack; ok is false when empty
func (s *Stack[T]) Pop() (elm T, ok bool) {
	if len(s.a) == 0 {
		return elm, false
	}

	elm = s.a[len(s.a)-1]
	var zero T
	s.a[len(s.a)-1] = zero
	s.a = s.a[:len(s.a)-1]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (elm T, ok bool) {
	if len(s.a) == 0 {
		return elm, false
	}

	return s.a[len(s.a)-1], true
}

// Size returns the number of elements
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Truncate drops everything above depth n and returns the dropped elements, bottom first
func (s *Stack[T]) Truncate(n int) []T {
	if n < 0 {
		n = 0
	}
	if n >= len(s.a) {
		return nil
	}

	out := append([]T(nil), s.a[n:]...)
	clear(s.a[n:])
	s.a = s.a[:n]

	return out
}

// Array returns the underlying array of the stack, bottom first
func (s *Stack[T]) Array() []T {
	return s.a
}
