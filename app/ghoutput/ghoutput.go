// Package ghoutput publishes step outputs for GitHub Actions.
package ghoutput

import (
	"fmt"
	"io"
	"os"
)

type Writer struct {
	path string
	out  io.Writer
}

// New returns a writer appending to path (the value of GITHUB_OUTPUT).
// With an empty path outputs are only echoed to out.
func New(path string, out io.Writer) *Writer {
	return &Writer{path: path, out: out}
}

func (w *Writer) Set(name, value string) error {
	if w.path != "" {
		f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open GitHub output file: %w", err)
		}
		if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
			f.Close()
			return fmt.Errorf("failed to write GitHub output: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close GitHub output file: %w", err)
		}
	}

	fmt.Fprintf(w.out, "::set-output name=%s::%s\n", name, value)
	return nil
}
