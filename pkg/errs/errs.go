package errs

import (
	"errors"
	"fmt"

	"taxiclient/pkg/models"
)

var (
	// ErrUnauthenticated means the session credential is missing or the
	// server rejected it. The caller must re-authenticate; never retried.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRoleNotAssigned blocks negotiation until the role session has
	// resolved the user as passenger or driver.
	ErrRoleNotAssigned = errors.New("role not assigned")

	// ErrInvalidTransition marks a locally rejected state change. No
	// network call is made and no cache state is touched.
	ErrInvalidTransition = errors.New("invalid transition")

	ErrNotFound = errors.New("not found")

	// ErrTransportUnavailable means the push channel exhausted its retry
	// budget. Reads and writes over the RPC client still work; state may
	// be stale.
	ErrTransportUnavailable = errors.New("transport unavailable")
)

// ServerError carries an opaque server-side failure message verbatim.
// Callers branch on the category, not the text.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func InvalidTransition(from, to models.OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func InvalidOfferTransition(from, to models.OfferStatus) error {
	return fmt.Errorf("%w: offer %s -> %s", ErrInvalidTransition, from, to)
}
