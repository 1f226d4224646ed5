package resource

import "errors"

var (
	// ErrResourceClassNotFound is returned when a class has no resource declaration
	ErrResourceClassNotFound = errors.New("resource class not found")

	// ErrOperationNotFound is returned when an operation name is unknown for a class
	ErrOperationNotFound = errors.New("operation not found")

	// ErrMisconfiguredOperation is returned when an operation has neither a type, a method nor a route name
	ErrMisconfiguredOperation = errors.New("operation misconfigured")

	// ErrDuplicateOperation is returned when two declared operations resolve to the same name
	ErrDuplicateOperation = errors.New("duplicate operation name")
)

// IsResourceClassNotFound returns true if the error is ErrResourceClassNotFound
func IsResourceClassNotFound(err error) bool {
	return errors.Is(err, ErrResourceClassNotFound)
}

// IsOperationNotFound returns true if the error is ErrOperationNotFound
func IsOperationNotFound(err error) bool {
	return errors.Is(err, ErrOperationNotFound)
}
