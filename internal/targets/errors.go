package targets

import "errors"

var (
	// ErrNotConfigured indicates the base URL or token is missing.
	ErrNotConfigured = errors.New("targets api is not configured")

	// ErrUnauthorized indicates the bearer token was rejected; it
	// usually means the token expired and must be refreshed.
	ErrUnauthorized = errors.New("targets api rejected the token")

	// ErrForbidden indicates the token lacks rights for the resource.
	ErrForbidden = errors.New("targets api denied access")

	// ErrNotFound indicates the requested map or target does not exist.
	ErrNotFound = errors.New("targets api resource not found")

	// ErrUpstream indicates a server-side failure in the Targets system.
	ErrUpstream = errors.New("targets api server error")

	// ErrTimeout indicates the upstream did not answer in time.
	ErrTimeout = errors.New("targets api request timed out")

	// ErrBadPayload indicates a 2xx response whose body does not match
	// the documented shape.
	ErrBadPayload = errors.New("targets api returned an unexpected payload")
)
