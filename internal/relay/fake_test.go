package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"
)

// fakePool is a scripted Pool; unset funcs succeed.
type fakePool struct {
	mu          sync.Mutex
	ensureCalls map[string]int
	closeCalls  int
	onDrop      func(url string, err error)

	EnsureFunc  func(ctx context.Context, url string) error
	QueryFunc   func(ctx context.Context, urls []string, filter nostr.Filter) ([]*nostr.Event, error)
	PublishFunc func(url string, event nostr.Event) error
}

func (p *fakePool) EnsureRelay(ctx context.Context, url string) error {
	p.mu.Lock()
	p.ensureCalls[url]++
	p.mu.Unlock()
	if p.EnsureFunc != nil {
		return p.EnsureFunc(ctx, url)
	}
	return nil
}

func (p *fakePool) QuerySync(ctx context.Context, urls []string, filter nostr.Filter) ([]*nostr.Event, error) {
	if p.QueryFunc != nil {
		return p.QueryFunc(ctx, urls, filter)
	}
	return nil, nil
}

func (p *fakePool) Publish(ctx context.Context, urls []string, event nostr.Event) <-chan PublishResult {
	results := make(chan PublishResult, len(urls))
	for _, url := range urls {
		var err error
		if p.PublishFunc != nil {
			err = p.PublishFunc(url, event)
		}
		results <- PublishResult{URL: url, Err: err}
	}
	close(results)
	return results
}

func (p *fakePool) Close(string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
}

func (p *fakePool) closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

// fakeFactory hands out pools configured by setup and remembers them.
type fakeFactory struct {
	mu    sync.Mutex
	pools []*fakePool
	setup func(p *fakePool)
}

func (f *fakeFactory) New(onDrop func(url string, err error)) Pool {
	p := &fakePool{ensureCalls: map[string]int{}, onDrop: onDrop}
	if f.setup != nil {
		f.setup(p)
	}
	f.mu.Lock()
	f.pools = append(f.pools, p)
	f.mu.Unlock()
	return p
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pools)
}

func (f *fakeFactory) last() *fakePool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pools[len(f.pools)-1]
}

var errRefused = errors.New("connection refused")

func failFor(urls ...string) func(context.Context, string) error {
	return func(_ context.Context, url string) error {
		for _, u := range urls {
			if u == url {
				return errRefused
			}
		}
		return nil
	}
}

func hangFor(urls ...string) func(context.Context, string) error {
	return func(ctx context.Context, url string) error {
		for _, u := range urls {
			if u == url {
				<-ctx.Done()
				// returns later than the manager's own timeout race
				time.Sleep(10 * time.Millisecond)
				return ctx.Err()
			}
		}
		return nil
	}
}
