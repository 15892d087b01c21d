package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all of its writers.
// A failing writer does not stop the others.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.Writers = append(cw.Writers, w)
		}
	}
	return cw
}

// Write reports len(p) when at least one writer took the whole buffer.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var errs error
	delivered := false
	for _, w := range cw.Writers {
		written, err := w.Write(p)
		if err == nil && written < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return len(p), errs
	}
	return 0, errs
}
