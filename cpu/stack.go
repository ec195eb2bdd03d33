package cpu

// Stack is a depth-limited LIFO.
type Stack[T any] struct {
	Data  []T
	Limit int // Maximum depth, 0 for unlimited.
}

// Push adds a value, returning false when the stack is full.
func (s *Stack[T]) Push(value T) (ok bool) {
	if s.Full() {
		return
	}
	s.Data = append(s.Data, value)
	ok = true
	return
}

func (s *Stack[T]) Pop() (value T, ok bool) {
	value, ok = s.Peek()
	if ok {
		var zero T
		s.Data[len(s.Data)-1] = zero
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack[T]) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack[T]) Full() bool {
	return s.Limit > 0 && len(s.Data) >= s.Limit
}

func (s *Stack[T]) Len() int {
	return len(s.Data)
}

func (s *Stack[T]) Peek() (value T, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// Below returns the entry 'depth' levels under the top.
func (s *Stack[T]) Below(depth int) (value T, ok bool) {
	n := len(s.Data) - 1 - depth
	if depth < 0 || n < 0 {
		return
	}
	return s.Data[n], true
}

func (s *Stack[T]) Reset() {
	if len(s.Data) > 0 {
		clear(s.Data)
		s.Data = s.Data[:0]
	}
}

// ParenEntry is the status saved by a bracket open.
type ParenEntry struct {
	VKE    bool
	OR     bool
	NER    bool
	Opener InsnType
}
