package adapter

import "context"

// Notifier delivers short operator alerts about finished jobs.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
