package download

import (
	"errors"
	"fmt"
)

// StageError records the pipeline stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

// Error returns the error message
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage err was raised in, if err wraps a *StageError.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return StageIdle, false
}
