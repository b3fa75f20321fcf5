package render

import (
	"io"
	"log"
)

var logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger routes renderer diagnostics to l.
func SetLogger(l *log.Logger) {
	logger = l
}
