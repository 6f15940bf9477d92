package code

import "fmt"

var codeMessageMap = map[int]string{
	ErrSuccess:          "Success",
	ErrUnknown:          "Unknown error",
	ErrBind:             "Failed to bind request parameters",
	ErrValidation:       "Request parameter validation failed",
	ErrTokenInvalid:     "Invalid authentication token",
	ErrPermissionDenied: "Unauthorized Access Requested",
	ErrTooManyRequests:  "Too many requests",

	ErrUserNotFound:     "User not found",
	ErrUserAlreadyExist: "User with this contact number already exists",
	ErrUserPinIncorrect: "Incorrect PIN",
	ErrUserInactive:     "PIN needs to be generated",
	ErrUserRoleInvalid:  "Invalid role. Allowed roles are admin, catcher, vet, or caretaker",

	ErrCaseNotFound:        "Dog not found",
	ErrCaseNumberExhausted: "Could not allocate a case number",
	ErrCaseAlreadyReleased: "Dog is already released",

	ErrKennelNotFound:    "Kennel not found",
	ErrKennelOccupied:    "Kennel is already occupied",
	ErrNoKennelAvailable: "No kennel available",
	ErrKennelEmpty:       "Kennel is empty",

	ErrDatabase:       "Database error",
	ErrRecordNotFound: "Record not found",
}

var codeStatusMap = map[int]int{
	ErrSuccess:          StatusOK,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrPermissionDenied: StatusForbidden,
	ErrTooManyRequests:  StatusTooManyRequests,

	ErrUserNotFound:     StatusNotFound,
	ErrUserAlreadyExist: StatusConflict,
	ErrUserPinIncorrect: StatusUnauthorized,
	ErrUserInactive:     StatusUnauthorized,
	ErrUserRoleInvalid:  StatusBadRequest,

	ErrCaseNotFound:        StatusNotFound,
	ErrCaseNumberExhausted: StatusInternalServerError,
	ErrCaseAlreadyReleased: StatusConflict,

	ErrKennelNotFound:    StatusNotFound,
	ErrKennelOccupied:    StatusConflict,
	ErrNoKennelAvailable: StatusConflict,
	ErrKennelEmpty:       StatusNotFound,

	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the message registered for an error code
func GetMessage(errorCode int) string {
	if msg, ok := codeMessageMap[errorCode]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus returns the HTTP status registered for an error code
func GetStatus(errorCode int) int {
	if status, ok := codeStatusMap[errorCode]; ok {
		return status
	}
	return StatusInternalServerError
}

// Error is a discriminated service error carrying one of the codes above.
// Services return it so the HTTP boundary can map guard violations to a
// transport status without string matching.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the code's registered message
func New(errorCode int) *Error {
	return &Error{Code: errorCode, Message: GetMessage(errorCode)}
}

// Newf creates an Error with a custom message
func Newf(errorCode int, format string, v ...interface{}) *Error {
	return &Error{Code: errorCode, Message: fmt.Sprintf(format, v...)}
}

// FromError returns the typed error if err is one, otherwise wraps it as ErrUnknown
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if typed, ok := err.(*Error); ok {
		return typed
	}
	return &Error{Code: ErrUnknown, Message: err.Error()}
}

// Is reports whether err carries the given error code
func Is(err error, errorCode int) bool {
	typed, ok := err.(*Error)
	return ok && typed.Code == errorCode
}
