package domain

import "errors"

// Sentinel errors shared by the repository, service, server and client
// layers. Handlers map these to HTTP statuses with errors.Is; the client
// maps statuses back to the same sentinels.
var (
	// ErrValidation marks input rejected before any persistence attempt,
	// e.g. an empty title.
	ErrValidation = errors.New("validation failed")

	// ErrAuthorization marks an attempt to act outside the caller's own
	// rows, e.g. inserting a todo with a foreign owner.
	ErrAuthorization = errors.New("not authorized")

	// ErrNotFound marks a mutation whose target is absent or not owned by
	// the caller. Row-level security makes those two cases
	// indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation, e.g. registering an email
	// twice.
	ErrConflict = errors.New("already exists")

	// ErrTransport marks a network or availability failure between the
	// client and the API.
	ErrTransport = errors.New("transport failure")
)
