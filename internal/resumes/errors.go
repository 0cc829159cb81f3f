package resumes

import "errors"

var (
	ErrNotFound    = errors.New("resume not found")
	ErrEmptyUpdate = errors.New("no fields to update")
	ErrShareClosed = errors.New("share not public or expired")
)

// ValidationKind classifies a rejected submission.
type ValidationKind string

const (
	ValidationMissing  ValidationKind = "missing"
	ValidationTooShort ValidationKind = "too_short"
	ValidationTooLong  ValidationKind = "too_long"
)

// ValidationError is returned before any external call is made.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AsValidationError returns the validation error, if err is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
