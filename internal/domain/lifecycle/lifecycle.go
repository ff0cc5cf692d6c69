// Package lifecycle holds timeouts shared by the delivery and infra layers.
package lifecycle

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds startup probes and graceful shutdown.
	DefaultTimeout = 15 * time.Second

	// PersistenceTimeout bounds every single call into the persistence layer.
	PersistenceTimeout = 10 * time.Second
)

// WithPersistenceTimeout derives a context bounded by PersistenceTimeout.
// An earlier deadline already present on ctx is kept.
func WithPersistenceTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < PersistenceTimeout {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, PersistenceTimeout)
}
