package proposal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the structural failures that abort a generation.
// Test an error against them with errors.Is.
var (
	ErrConfig   = errors.New("proposal: invalid configuration")
	ErrWorkbook = errors.New("proposal: unreadable workbook")
	ErrTemplate = errors.New("proposal: unreadable template")
	ErrOutput   = errors.New("proposal: cannot write output")
)

// Error reports which input of which operation failed. It matches both its
// Kind sentinel and the underlying cause.
type Error struct {
	Op    string // operation name, e.g. "Generate", "Calibrate"
	Input string // failing input, e.g. "mapping", "template"
	Kind  error  // one of the sentinel errors
	Err   error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proposal.%s: %s: %v", e.Op, e.Input, e.Err)
	}
	return fmt.Sprintf("proposal.%s: %s: %v", e.Op, e.Input, e.Kind)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// newError creates an Error for input of op.
func newError(op, input string, kind, err error) *Error {
	return &Error{Op: op, Input: input, Kind: kind, Err: err}
}
