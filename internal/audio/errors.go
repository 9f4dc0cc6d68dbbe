package audio

import (
	"errors"
	"fmt"
)

// MergeError is a failure while joining tracks into the output file.
// Downloaded tracks are left in place when it occurs.
type MergeError struct {
	Output string
	Err    error
}

// Error returns the error message
func (e *MergeError) Error() string {
	return fmt.Sprintf("merge into %s: %v", e.Output, e.Err)
}

// Unwrap returns the underlying error
func (e *MergeError) Unwrap() error {
	return e.Err
}

// IsMergeError returns true if err is or wraps a *MergeError.
func IsMergeError(err error) bool {
	var me *MergeError
	return errors.As(err, &me)
}
