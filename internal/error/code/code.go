package code

// HTTP status codes used by the error-code maps.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusInternalServerError = 500
	StatusTooManyRequests     = 429
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown internal error.
	ErrUnknown
	// ErrBind - 400: failed to bind request parameters.
	ErrBind
	// ErrValidation - 400: request parameter validation failed.
	ErrValidation
	// ErrTokenInvalid - 401: no credential presented.
	ErrTokenInvalid
	// ErrPermissionDenied - 403: invalid/expired token, or caller role not allowed.
	ErrPermissionDenied
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
)

// User error codes (101xxx).
const (
	// ErrUserNotFound - 404: user does not exist.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409: contact number already registered.
	ErrUserAlreadyExist
	// ErrUserPinIncorrect - 401: PIN does not match.
	ErrUserPinIncorrect
	// ErrUserInactive - 401: user has not generated a PIN yet.
	ErrUserInactive
	// ErrUserRoleInvalid - 400: role is not one of admin, catcher, vet, caretaker.
	ErrUserRoleInvalid
)

// Dog case error codes (102xxx).
const (
	// ErrCaseNotFound - 404: dog case does not exist.
	ErrCaseNotFound int = iota + 102000
	// ErrCaseNumberExhausted - 500: daily case number sequence could not be allocated.
	ErrCaseNumberExhausted
	// ErrCaseAlreadyReleased - 409: case is already in its terminal state.
	ErrCaseAlreadyReleased
)

// Kennel error codes (103xxx).
const (
	// ErrKennelNotFound - 404: kennel does not exist.
	ErrKennelNotFound int = iota + 103000
	// ErrKennelOccupied - 409: kennel is already occupied.
	ErrKennelOccupied
	// ErrNoKennelAvailable - 409: no free kennel in the pool.
	ErrNoKennelAvailable
	// ErrKennelEmpty - 404: no active case is housed in the kennel.
	ErrKennelEmpty
)

// Database error codes (105xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: record does not exist.
	ErrRecordNotFound
)
