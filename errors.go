package docxfill

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord - input is not a record at all
var ErrMalformedRecord = errors.New("malformed record")

// RecordError - record could not be built from input
type RecordError struct {
	Reason string
	Cause  error
}

func (e *RecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed record: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed record: %s", e.Reason)
}

// Is - every RecordError is ErrMalformedRecord
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}

// DocumentError - error during template document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// RenderError - render called with structurally invalid input
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return "render error: " + e.Message
}
