package pipeline

import "fmt"

// LoadError means the input could not be turned into a table. It aborts the
// run.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError means the cleaned table could not be written. It aborts the run.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ValueError describes one malformed cell. It never aborts the run: the cell
// becomes null and the error is counted in the log.
type ValueError struct {
	Column string
	Row    int
	Raw    string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s row %d: %q: %v", e.Column, e.Row, e.Raw, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
