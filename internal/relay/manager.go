// Package relay owns the client's relay connections: the configured relay list,
// per-relay status, publishing with a first-success race and union queries.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
)

const (
	defaultConnectTimeout = 5 * time.Second
	maxTransitions        = 512
)

var errConnectTimeout = errors.New("connection timed out")

// Transition is one applied action and the connected count it left behind.
type Transition struct {
	At        time.Time
	Action    Action
	Connected int
}

type Options struct {
	ConnectTimeout time.Duration
	// QueryTimeout and PublishTimeout bound relay round trips; zero leaves ctx as is.
	QueryTimeout   time.Duration
	PublishTimeout time.Duration
	// Defaults seed the relay list when the store has none.
	Defaults []domain.Relay
	// Migrations maps a legacy relay url to its replacement, applied when the legacy url fails.
	Migrations map[string]string
	Clock      func() time.Time
}

type Manager struct {
	newPool PoolFactory
	store   store.Store
	opts    Options

	mu          sync.Mutex
	state       State
	pool        Pool
	generation  uint64
	connecting  bool
	transitions []Transition

	changes chan struct{}
}

// NewManager restores the relay list from s, or seeds it from opts.Defaults.
func NewManager(newPool PoolFactory, s store.Store, opts Options) (*Manager, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	m := &Manager{
		newPool: newPool,
		store:   s,
		opts:    opts,
		changes: make(chan struct{}, 1),
	}

	var stored []domain.Relay
	found, err := store.GetJSON(s, store.KeyRelays, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to load relay list: %w", err)
	}
	if !found {
		stored = opts.Defaults
	}
	m.dispatch(Load{Relays: stored})
	if !found {
		if err := m.persist(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// dispatchLocked applies a; the caller holds mu.
func (m *Manager) dispatchLocked(a Action) State {
	m.state = Reduce(m.state, a)
	m.transitions = append(m.transitions, Transition{At: m.opts.Clock(), Action: a, Connected: m.state.Connected})
	if len(m.transitions) > maxTransitions {
		m.transitions = append(m.transitions[:0:0], m.transitions[len(m.transitions)-maxTransitions:]...)
	}
	relaysConnected.Set(float64(m.state.Connected))
	m.notify()
	return m.state
}

func (m *Manager) dispatch(a Action) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatchLocked(a)
}

func (m *Manager) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Manager) persist() error {
	m.mu.Lock()
	relays := m.state.Relays
	m.mu.Unlock()
	if err := store.SetJSON(m.store, store.KeyRelays, relays); err != nil {
		return fmt.Errorf("failed to persist relay list: %w", err)
	}
	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Relays() []domain.Relay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Relay(nil), m.state.Relays...)
}

func (m *Manager) ConnectedCount() int {
	return m.State().Connected
}

// IsOpen reports whether a pool exists, connected relays or not.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool != nil
}

func (m *Manager) IsConnected() bool {
	return m.ConnectedCount() > 0
}

func (m *Manager) transitionLog() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transition(nil), m.transitions...)
}

// History returns the most recent applied actions, oldest first.
func (m *Manager) History() []domain.RelayTransition {
	log := m.transitionLog()
	out := make([]domain.RelayTransition, 0, len(log))
	for _, t := range log {
		out = append(out, t.record())
	}
	return out
}

// Connect attempts every configured relay concurrently. It is a no-op while a
// connect is in progress or a pool is already open.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.connecting || m.pool != nil {
		m.mu.Unlock()
		return nil
	}
	m.connecting = true
	m.generation++
	gen := m.generation
	pool := m.newPool(func(url string, err error) { m.dropped(gen, url, err) })
	m.pool = pool
	relays := append([]domain.Relay(nil), m.state.Relays...)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.connecting = false
		m.notify()
		m.mu.Unlock()
	}()

	logger.Log.Info("connecting to relays", "component", "relay", "relays", len(relays))

	var (
		wg       sync.WaitGroup
		migrated bool
		migMu    sync.Mutex
	)
	for _, r := range relays {
		m.dispatch(Connecting{URL: r.URL})
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			err := m.attempt(ctx, pool, url)
			if m.migrate(gen, url, err) {
				migMu.Lock()
				migrated = true
				migMu.Unlock()
			}
		}(r.URL)
	}
	wg.Wait()

	if migrated {
		if err := m.persist(); err != nil {
			logger.Log.Error("relay migration not persisted", "component", "relay", "error", err)
		}
	}

	logger.Log.Info("relay connect finished", "component", "relay", "connected", m.ConnectedCount(), "relays", len(relays))
	return nil
}

// attempt races one relay connection against the connect timeout.
func (m *Manager) attempt(ctx context.Context, pool Pool, url string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- pool.EnsureRelay(attemptCtx, url) }()

	select {
	case err := <-done:
		return err
	case <-attemptCtx.Done():
		return fmt.Errorf("%w after %s", errConnectTimeout, m.opts.ConnectTimeout)
	}
}

// migrate records the outcome of one attempt and reports whether a legacy url was replaced.
func (m *Manager) migrate(gen uint64, url string, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a Disconnect during the attempt makes its result stale
	if gen != m.generation || m.pool == nil {
		return false
	}

	if err == nil {
		connectAttempts.WithLabelValues("connected").Inc()
		m.dispatchLocked(Connected{URL: url})
		return false
	}

	if fallback, ok := m.opts.Migrations[url]; ok && fallback != url {
		connectAttempts.WithLabelValues("migrated").Inc()
		logger.Log.Warn("legacy relay failed, switching to fallback",
			"component", "relay", "url", url, "fallback", fallback, "error", err)
		m.dispatchLocked(Replaced{From: url, To: fallback})
		return true
	}

	result := "error"
	if errors.Is(err, errConnectTimeout) {
		result = "timeout"
	}
	connectAttempts.WithLabelValues(result).Inc()
	logger.Log.Warn("relay connection failed", "component", "relay", "url", url, "error", err)
	m.dispatchLocked(Failed{URL: url, Err: err.Error()})
	return false
}

func (m *Manager) dropped(gen uint64, url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || m.pool == nil {
		return
	}
	msg := "connection closed"
	if err != nil {
		msg = err.Error()
	}
	m.dispatchLocked(Failed{URL: url, Err: msg})
}

// Disconnect closes the pool. Calling it without a pool is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	pool := m.pool
	if pool == nil {
		m.mu.Unlock()
		return
	}
	m.pool = nil
	m.dispatchLocked(DisconnectAll{})
	m.mu.Unlock()

	pool.Close("disconnect requested")
	logger.Log.Info("disconnected from relays", "component", "relay")
}

// Publish resolves on the first relay that accepts event.
func (m *Manager) Publish(ctx context.Context, event nostr.Event) error {
	m.mu.Lock()
	pool := m.pool
	urls := m.state.writableURLs()
	m.mu.Unlock()

	if pool == nil {
		return internal_errors.ErrNotConnected
	}
	if len(urls) == 0 {
		return internal_errors.ErrNoWritableRelays
	}

	// relays still in flight after the first acceptance are left to finish
	var (
		poolCtx    = context.WithoutCancel(ctx)
		cancelPool context.CancelFunc
	)
	if m.opts.PublishTimeout > 0 {
		poolCtx, cancelPool = context.WithTimeout(poolCtx, m.opts.PublishTimeout)
	} else {
		poolCtx, cancelPool = context.WithCancel(poolCtx)
	}
	results := pool.Publish(poolCtx, urls, event)
	defer func() {
		go func() {
			for range results {
			}
			cancelPool()
		}()
	}()

	var errs []error
collect:
	for range urls {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			if res.Err == nil {
				publishes.WithLabelValues("ok").Inc()
				logger.Log.Debug("event published", "component", "relay", "event_id", event.ID, "kind", event.Kind, "relay", res.URL)
				return nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", res.URL, res.Err))
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			break collect
		}
	}

	publishes.WithLabelValues("failed").Inc()
	logger.Log.Warn("event rejected by every relay", "component", "relay", "event_id", event.ID, "kind", event.Kind, "relays", len(urls))
	return fmt.Errorf("%w: %w", internal_errors.ErrPublishFailed, errors.Join(errs...))
}

// Query returns the de-duplicated union of matches from readable relays.
// Without a pool or readable relays the result is empty.
func (m *Manager) Query(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error) {
	m.mu.Lock()
	pool := m.pool
	urls := m.state.readableURLs()
	m.mu.Unlock()

	if pool == nil || len(urls) == 0 {
		return nil, nil
	}

	if m.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.QueryTimeout)
		defer cancel()
	}

	events, err := pool.QuerySync(ctx, urls, filter)
	if err != nil {
		return nil, fmt.Errorf("relay query failed: %w", err)
	}

	seen := make(map[string]struct{}, len(events))
	out := events[:0:0]
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if _, dup := seen[ev.ID]; dup {
			continue
		}
		seen[ev.ID] = struct{}{}
		out = append(out, ev)
	}
	queryEvents.Add(float64(len(out)))
	return out, nil
}

func normalizeURL(url string) string {
	return nostr.NormalizeURL(strings.TrimSpace(url))
}

// AddRelay appends a relay. While connected it is attempted right away; a failing
// legacy url is returned as its persisted fallback.
func (m *Manager) AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error) {
	url = normalizeURL(url)
	if url == "" {
		return domain.Relay{}, fmt.Errorf("%w: relay url is required", internal_errors.ErrValidation)
	}

	m.mu.Lock()
	if _, exists := m.state.Relay(url); exists {
		m.mu.Unlock()
		return domain.Relay{}, internal_errors.ErrRelayExists
	}
	m.dispatchLocked(Add{Relay: domain.Relay{URL: url, Read: read, Write: write}})
	pool, gen := m.pool, m.generation
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		return domain.Relay{}, err
	}

	if pool != nil {
		m.dispatch(Connecting{URL: url})
		if m.migrate(gen, url, m.attempt(ctx, pool, url)) {
			url = m.opts.Migrations[url]
			if err := m.persist(); err != nil {
				return domain.Relay{}, err
			}
		}
	}

	r, ok := m.State().Relay(url)
	if !ok {
		// removed while its first attempt was running
		return domain.Relay{}, internal_errors.ErrRelayNotFound
	}
	return r, nil
}

// RemoveRelay drops a relay from the list. Open connections are left to the pool.
func (m *Manager) RemoveRelay(url string) error {
	url = normalizeURL(url)

	m.mu.Lock()
	if _, exists := m.state.Relay(url); !exists {
		m.mu.Unlock()
		return internal_errors.ErrRelayNotFound
	}
	m.dispatchLocked(Remove{URL: url})
	m.mu.Unlock()

	return m.persist()
}
