package notify

import "context"

// Notifier publishes alerts about noteworthy feedback (low ratings,
// negative sentiment). Implementations must be safe to call from a
// background goroutine.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}
