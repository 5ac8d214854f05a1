package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownColumn is returned by repositories when a sort or filter references a
// column the schema does not declare.
var ErrUnknownColumn = errors.New("unknown column")

// InvalidRangeError reports a missing or malformed _start/_end/_order parameter.
type InvalidRangeError struct {
	Message string
}

func (e *InvalidRangeError) Error() string { return e.Message }

func NewInvalidRangeError(format string, args ...interface{}) *InvalidRangeError {
	return &InvalidRangeError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports a filter, id or patch value that could not be coerced to
// the declared type of its field.
type ValidationError struct {
	Field string
	Value interface{}
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid value %v for field %s: %v", e.Value, e.Field, e.Cause)
	}
	return fmt.Sprintf("invalid value %v for field %s", e.Value, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NotFoundError reports a single-entity operation on an id that does not exist.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %v", e.Resource, e.ID)
}

// HTTPStatus maps an error from the query layer or a service to a status code and
// a machine readable code. Unknown errors are server errors.
func HTTPStatus(err error) (int, string) {
	var rangeErr *InvalidRangeError
	var validationErr *ValidationError
	var notFoundErr *NotFoundError

	switch {
	case errors.As(err, &rangeErr):
		return http.StatusBadRequest, "invalid_range"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "validation_error"
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
