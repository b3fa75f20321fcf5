package wad

import (
	"io"
	"log"
)

var logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger directs the loader's progress messages to l.
func SetLogger(l *log.Logger) {
	logger = l
}
