// errors.go defines the error taxonomy for organization and membership
// operations. Handlers map each sentinel to a stable HTTP status code.
package orgs

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrPermission marks an operation the caller is not allowed to perform.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound marks a missing organization, member, or user.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a state conflict, such as inviting an existing member.
	ErrConflict = errors.New("conflict")

	// ErrLastAdmin marks an operation that would leave an organization
	// without any admin.
	ErrLastAdmin = errors.New("last admin")
)

// Error carries a sentinel kind together with a user-facing message.
// errors.Is against the sentinels works through Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an Error of the given kind
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Convenience constructors for the common kinds.

func ValidationError(message string) *Error {
	return NewError(ErrValidation, message)
}

func PermissionError(message string) *Error {
	return NewError(ErrPermission, message)
}

func NotFoundError(message string) *Error {
	return NewError(ErrNotFound, message)
}

func ConflictError(message string) *Error {
	return NewError(ErrConflict, message)
}

func LastAdminError(message string) *Error {
	return NewError(ErrLastAdmin, message)
}
