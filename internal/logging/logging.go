package logging

import (
	"io"
	"log"
)

// New returns a logger prefixed with the component name, in the format the
// kener binaries share.
func New(w io.Writer, name string) *log.Logger {
	return log.New(w, name+" ", log.LstdFlags|log.LUTC)
}
