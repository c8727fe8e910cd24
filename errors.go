package familykit

import (
	"errors"
	"fmt"
)

// Sentinel errors for familykit operations.
var (
	// ErrForbidden is returned when the actor is not allowed to perform an operation.
	ErrForbidden = errors.New("familykit: forbidden")

	// ErrUnauthenticated is returned when no actor could be found for a request.
	ErrUnauthenticated = errors.New("familykit: unauthenticated")

	// ErrPermissionCheck is returned when a permission check failed internally.
	ErrPermissionCheck = errors.New("familykit: permission check error")

	// ErrRepositoryNotRegistered is returned when an ownership check is requested
	// for a resource type that has no registered repository. It signals a wiring
	// mistake, not a denial.
	ErrRepositoryNotRegistered = errors.New("familykit: repository not registered")

	// ErrPolicyNotFound is returned when updating a policy that does not exist.
	ErrPolicyNotFound = errors.New("familykit: policy not found")

	// ErrInvalidPolicy is returned when a policy cannot be registered.
	ErrInvalidPolicy = errors.New("familykit: invalid policy")

	// ErrInvalidPermission is returned when a permission string is malformed.
	ErrInvalidPermission = errors.New("familykit: invalid permission")

	// ErrInvalidResource is returned when a resource identifier cannot be extracted.
	ErrInvalidResource = errors.New("familykit: invalid resource")
)

// DefaultForbiddenMessage is used when a failed verdict has no message.
const DefaultForbiddenMessage = "you do not have permission to perform this operation"

// Error wraps a sentinel error with additional context.
type Error struct {
	Err          error        // Underlying sentinel error
	Message      string       // Additional context
	Code         ErrorCode    // Verdict code, if the error came from a verdict
	ResourceType ResourceType // Resource type involved
	ResourceID   string       // Resource involved
	Operation    Operation    // Operation involved
	UserID       string       // Acting user
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithResource adds resource information to the error.
func (e *Error) WithResource(resourceType ResourceType, resourceID string) *Error {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithOperation adds the operation to the error.
func (e *Error) WithOperation(op Operation) *Error {
	e.Operation = op
	return e
}

// WithUser adds user information to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// WithCode adds the verdict code to the error.
func (e *Error) WithCode(code ErrorCode) *Error {
	e.Code = code
	return e
}

// VerdictError converts a failed verdict into an *Error. Internal check
// failures map to ErrPermissionCheck, every denial maps to ErrForbidden.
// It returns nil for a successful verdict.
func VerdictError(v Verdict) *Error {
	if v.Success {
		return nil
	}

	sentinel := ErrForbidden
	if v.ErrorCode == CodePermissionCheckError {
		sentinel = ErrPermissionCheck
	}

	msg := v.ErrorMessage
	if msg == "" {
		msg = DefaultForbiddenMessage
	}
	return NewError(sentinel, msg).WithCode(v.ErrorCode)
}

// IsForbidden checks if an error is an authorization denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthenticated checks if an error is due to a missing actor.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsRepositoryNotRegistered checks if an error is an ownership wiring mistake.
func IsRepositoryNotRegistered(err error) bool {
	return errors.Is(err, ErrRepositoryNotRegistered)
}

// IsInvalidResource checks if an error is due to a missing resource identifier.
func IsInvalidResource(err error) bool {
	return errors.Is(err, ErrInvalidResource)
}
