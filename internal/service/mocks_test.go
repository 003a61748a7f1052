package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/require"

	"github.com/0xrinegade/4ochan/internal/cache"
	"github.com/0xrinegade/4ochan/internal/codec"
	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
)

// --- Mocks ---

// MockRelays mocks RelayManager. Unset funcs succeed; Query answers from Events.
type MockRelays struct {
	open        bool
	Events      []nostr.Event
	queryFunc   func(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error)
	publishFunc func(ctx context.Context, event nostr.Event) error

	mu           sync.Mutex
	queries      []nostr.Filter
	published    []nostr.Event
	connectCalls int
}

func (m *MockRelays) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectCalls++
	m.open = true
	return nil
}

func (m *MockRelays) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}

func (m *MockRelays) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *MockRelays) ConnectedCount() int {
	if m.IsOpen() {
		return 1
	}
	return 0
}

func (m *MockRelays) Publish(ctx context.Context, event nostr.Event) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(ctx, event); err != nil {
			return err
		}
	} else if !m.IsOpen() {
		return internal_errors.ErrNotConnected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *MockRelays) Query(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error) {
	m.mu.Lock()
	m.queries = append(m.queries, filter)
	m.mu.Unlock()

	if m.queryFunc != nil {
		return m.queryFunc(ctx, filter)
	}
	var out []*nostr.Event
	for i := range m.Events {
		if filter.Matches(&m.Events[i]) {
			out = append(out, &m.Events[i])
		}
	}
	return out, nil
}

func (m *MockRelays) Relays() []domain.Relay {
	return []domain.Relay{{URL: "wss://relay.example", Status: domain.RelayConnected, Read: true, Write: true}}
}

func (m *MockRelays) History() []domain.RelayTransition {
	return []domain.RelayTransition{{Action: "connected", URL: "wss://relay.example", Connected: 1}}
}

func (m *MockRelays) AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error) {
	return domain.Relay{URL: url, Read: read, Write: write}, nil
}

func (m *MockRelays) RemoveRelay(url string) error {
	return nil
}

func (m *MockRelays) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *MockRelays) publishedKinds() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]int, 0, len(m.published))
	for _, ev := range m.published {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// --- Helpers ---

const baseTime = 1_700_000_000

func at(sec int64) time.Time {
	return time.Unix(baseTime+sec, 0)
}

func newIdentity(t *testing.T) *domain.Identity {
	t.Helper()
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	return &domain.Identity{PublicKey: pk, PrivateKey: sk}
}

// author signs relay-side events for another identity at a movable time.
type author struct {
	codec *codec.Codec
	now   time.Time
}

func newAuthor(t *testing.T) *author {
	a := &author{now: at(0)}
	a.codec = codec.New(newIdentity(t), codec.WithClock(func() time.Time { return a.now }))
	return a
}

func (a *author) thread(t *testing.T, board string, sec int64, title string) nostr.Event {
	t.Helper()
	a.now = at(sec)
	ev, err := a.codec.EncodeThread(domain.ThreadCreationData{BoardId: board, Title: title, Content: "op"})
	require.NoError(t, err)
	return ev
}

func (a *author) post(t *testing.T, threadId string, sec int64, refs ...string) nostr.Event {
	t.Helper()
	a.now = at(sec)
	ev, err := a.codec.EncodePost(domain.PostCreationData{ThreadId: threadId, Content: fmt.Sprintf("reply at %d", sec), References: refs})
	require.NoError(t, err)
	return ev
}

type fixture struct {
	svc    *Service
	relays *MockRelays
	cache  *cache.Cache
	store  *store.Memory
	me     *domain.Identity
	clock  *time.Time
}

func newFixture(t *testing.T, open bool, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		relays: &MockRelays{open: open},
		store:  store.NewMemory(),
		me:     newIdentity(t),
	}
	now := at(1000)
	f.clock = &now
	f.cache = cache.New(f.store)

	ids := 0
	f.svc = New(f.relays, f.cache, f.me, cfg,
		WithClock(func() time.Time { return *f.clock }),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("n%d", ids)
		}),
	)
	return f
}
