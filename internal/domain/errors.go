package domain

import (
	"errors"
	"fmt"
)

// ParameterExtractionError reports a failed extraction of a required
// parameter or a validation failure of an extracted value. Whether it
// invalidates the whole intent is the caller's policy.
type ParameterExtractionError struct {
	Parameter string
	Reason    string
	Err       error
}

func (e *ParameterExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parameter %q: %s: %v", e.Parameter, e.Reason, e.Err)
	}
	return fmt.Sprintf("parameter %q: %s", e.Parameter, e.Reason)
}

func (e *ParameterExtractionError) Unwrap() error {
	return e.Err
}

// IsParameterExtractionError reports whether err wraps a parameter
// extraction failure.
func IsParameterExtractionError(err error) bool {
	var target *ParameterExtractionError
	return errors.As(err, &target)
}
