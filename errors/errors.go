package errors

import (
	"fmt"
	"strings"
)

var (
	ErrWorkerPanic              = fmt.Errorf("worker panic")
	ErrValidation               = fmt.Errorf("validation failed")
	ErrParticipantAlreadyExists = fmt.Errorf("participant already exists")
	ErrParticipantNotFound      = fmt.Errorf("participant not found")
	ErrUnknownSender            = fmt.Errorf("sender is not in the room")
	ErrStorageUnavailable       = fmt.Errorf("storage unavailable")
)

// ValidationError carries every message produced while checking an input,
// not only the first one.
type ValidationError struct {
	Details []string
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(v.Details, "; "))
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
