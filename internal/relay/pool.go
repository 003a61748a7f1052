package relay

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

type PublishResult struct {
	URL string
	Err error
}

// Pool is the relay-pool primitive the manager drives.
type Pool interface {
	// EnsureRelay connects to url unless a live connection exists.
	EnsureRelay(ctx context.Context, url string) error
	// QuerySync queries every url and returns the de-duplicated union of matches.
	QuerySync(ctx context.Context, urls []string, filter nostr.Filter) ([]*nostr.Event, error)
	// Publish sends event to every url. The channel yields one result per url and is
	// buffered so that abandoned results never block the pool.
	Publish(ctx context.Context, urls []string, event nostr.Event) <-chan PublishResult
	Close(reason string)
}

// PoolFactory creates a pool; onDrop reports a live connection that went away.
type PoolFactory func(onDrop func(url string, err error)) Pool
