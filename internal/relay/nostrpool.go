package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nbd-wtf/go-nostr"
	"github.com/puzpuzpuz/xsync"

	"github.com/0xrinegade/4ochan/shared/logger"
)

var errRelayNotOpen = errors.New("relay connection not open")

// NostrPool keeps one websocket per relay url.
type NostrPool struct {
	relays *xsync.MapOf[string, *nostr.Relay]
	onDrop func(url string, err error)
	closed atomic.Bool

	// connection lifetime, independent of any single connect attempt
	ctx    context.Context
	cancel context.CancelFunc
}

// NewNostrPool is a PoolFactory.
func NewNostrPool(onDrop func(url string, err error)) Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &NostrPool{
		relays: xsync.NewMapOf[*nostr.Relay](),
		onDrop: onDrop,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *NostrPool) EnsureRelay(ctx context.Context, url string) error {
	if p.closed.Load() {
		return errRelayNotOpen
	}
	if r, ok := p.relays.Load(url); ok && r.Context().Err() == nil {
		return nil
	}

	r := nostr.NewRelay(p.ctx, url)
	if err := r.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	p.relays.Store(url, r)
	go p.watch(url, r)
	return nil
}

func (p *NostrPool) watch(url string, r *nostr.Relay) {
	<-r.Context().Done()
	if p.closed.Load() {
		return
	}
	if cur, ok := p.relays.Load(url); ok && cur == r {
		p.relays.Delete(url)
	}
	cause := context.Cause(r.Context())
	logger.Log.Warn("relay connection dropped", "component", "relay", "url", url, "error", cause)
	if p.onDrop != nil {
		p.onDrop(url, cause)
	}
}

func (p *NostrPool) QuerySync(ctx context.Context, urls []string, filter nostr.Filter) ([]*nostr.Event, error) {
	perRelay := make([][]*nostr.Event, len(urls))
	errs := make([]error, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		r, ok := p.relays.Load(url)
		if !ok {
			errs[i] = fmt.Errorf("%s: %w", url, errRelayNotOpen)
			continue
		}
		wg.Add(1)
		go func(i int, url string, r *nostr.Relay) {
			defer wg.Done()
			events, err := r.QuerySync(ctx, filter)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", url, err)
				return
			}
			perRelay[i] = events
		}(i, url, r)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var out []*nostr.Event
	succeeded := false
	for i := range urls {
		if errs[i] != nil {
			logger.Log.Debug("relay query failed", "component", "relay", "error", errs[i])
			continue
		}
		succeeded = true
		for _, ev := range perRelay[i] {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			out = append(out, ev)
		}
	}
	if !succeeded && len(urls) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (p *NostrPool) Publish(ctx context.Context, urls []string, event nostr.Event) <-chan PublishResult {
	results := make(chan PublishResult, len(urls))

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			r, ok := p.relays.Load(url)
			if !ok {
				results <- PublishResult{URL: url, Err: errRelayNotOpen}
				return
			}
			results <- PublishResult{URL: url, Err: r.Publish(ctx, event)}
		}(url)
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func (p *NostrPool) Close(reason string) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	logger.Log.Info("closing relay pool", "component", "relay", "reason", reason, "relays", p.relays.Size())
	p.relays.Range(func(url string, r *nostr.Relay) bool {
		if err := r.Close(); err != nil {
			logger.Log.Debug("relay close", "component", "relay", "url", url, "error", err)
		}
		p.relays.Delete(url)
		return true
	})
	p.cancel()
}
