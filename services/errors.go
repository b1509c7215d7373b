package services

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy shared by every service. Controllers translate these to
// HTTP statuses; nothing below this layer knows about HTTP.
var (
	// ErrUnauthenticated means no principal is bound to the presented token.
	ErrUnauthenticated = errors.New("no active session")
	// ErrForbidden means the bound principal's role is not allowed the operation.
	ErrForbidden = errors.New("unauthorized action")
	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTimeout means the backing store did not answer within storeTimeout.
	ErrTimeout = errors.New("backing store timed out")
)

// storeTimeout bounds every DynamoDB round trip so a slow store surfaces
// as ErrTimeout instead of hanging the connection.
const storeTimeout = 5 * time.Second

func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// translateStoreErr maps a context deadline into the Timeout sentinel and
// leaves everything else untouched.
func translateStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
