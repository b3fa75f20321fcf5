package render

import (
	"errors"
	"fmt"
)

var (
	ErrNoLevel       = errors.New("render: no level loaded")
	ErrShortBuffer   = errors.New("render: framebuffer too small")
	ErrBadViewSize   = errors.New("render: view size out of range")
	ErrMissingAssets = errors.New("render: missing assets")
)

// FatalError reports a frame that cannot be completed: corrupt geometry or
// sprite state, a draw request outside the view, or an exhausted scratch
// arena. No part of that frame should be presented.
type FatalError struct {
	Op  string
	Msg string
}

func (e *FatalError) Error() string {
	return e.Op + ": " + e.Msg
}

// fatalf aborts the current frame. RenderFrame recovers it into an error.
func fatalf(op, format string, args ...any) {
	panic(&FatalError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// recoverFatal turns a FatalError panic into *err. Other panics propagate.
func recoverFatal(err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	fe, ok := rec.(*FatalError)
	if !ok {
		panic(rec)
	}
	*err = fe
}
