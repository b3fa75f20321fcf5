package render

// Arena is a fixed-capacity bump allocator. Records are reused across frames
// by resetting the cursor; nothing is freed individually.
type Arena[T any] struct {
	items      []T
	n          int
	overflowed bool
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{items: make([]T, capacity)}
}

// Alloc returns the next zeroed record, or false once the arena is full.
// A failed Alloc marks the arena as overflowed until the next Reset.
func (a *Arena[T]) Alloc() (*T, bool) {
	if a.n == len(a.items) {
		a.overflowed = true
		return nil, false
	}
	p := &a.items[a.n]
	a.n++
	var zero T
	*p = zero
	return p, true
}

func (a *Arena[T]) Reset() {
	a.n = 0
	a.overflowed = false
}

func (a *Arena[T]) Len() int         { return a.n }
func (a *Arena[T]) Cap() int         { return len(a.items) }
func (a *Arena[T]) Overflowed() bool { return a.overflowed }

// At returns record i of the current frame.
func (a *Arena[T]) At(i int) *T { return &a.items[i] }

// Used returns the records allocated since the last Reset.
func (a *Arena[T]) Used() []T { return a.items[:a.n] }
