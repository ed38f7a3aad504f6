package services

import "errors"

// ValidationError is a client input error. Its message is shown to the
// caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("caller is not authenticated")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Validation errors
var (
	ErrNameRequired     = invalid("'name' is required")
	ErrNameEmpty        = invalid("'name' cannot be empty")
	ErrTitleRequired    = invalid("'title' is required")
	ErrTitleEmpty       = invalid("'title' cannot be empty")
	ErrProjectRequired  = invalid("'project_id' is required")
	ErrInvalidStatus    = invalid("Invalid status")
	ErrInvalidPriority  = invalid("Invalid priority")
	ErrAssigneeNotFound = invalid("assigned_to not found")

	ErrRegistrationFieldsRequired = invalid("username, email, password are required")
	ErrUserExists                 = invalid("User already exists")
	ErrLoginFieldsRequired        = invalid("Invalid input")
)
