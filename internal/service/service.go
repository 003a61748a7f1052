// Package service is the domain access facade: the only surface the UI talks to.
// It composes the relay manager, the domain cache and the event codec.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/internal/cache"
	"github.com/0xrinegade/4ochan/internal/codec"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/logger"
)

const (
	defaultPostBatchSize     = 100
	defaultNotificationLimit = 50
)

type RelayManager interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsOpen() bool
	ConnectedCount() int
	Publish(ctx context.Context, event nostr.Event) error
	Query(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error)
	Relays() []domain.Relay
	History() []domain.RelayTransition
	AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error)
	RemoveRelay(url string) error
}

type IDGenerator func() string

type Clock func() time.Time

type Config struct {
	// PostBatchSize caps the thread ids per batched post query.
	PostBatchSize int
	// NotificationLimit applies when GetNotifications is called without a limit.
	NotificationLimit int
}

type Option func(*Service)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) { s.newID = gen }
}

func WithClock(now Clock) Option {
	return func(s *Service) { s.now = now }
}

// WithSigner replaces the codec signer; used in tests.
func WithSigner(signer codec.Signer) Option {
	return func(s *Service) { s.codecOpts = append(s.codecOpts, codec.WithSigner(signer)) }
}

type Service struct {
	relays   RelayManager
	cache    *cache.Cache
	codec    *codec.Codec
	identity *domain.Identity
	cfg      Config

	newID     IDGenerator
	now       Clock
	codecOpts []codec.Option

	// subMu serializes subscription changes so a thread never gets two subscription events.
	subMu sync.Mutex
}

func New(relays RelayManager, c *cache.Cache, identity *domain.Identity, cfg Config, opts ...Option) *Service {
	if cfg.PostBatchSize <= 0 {
		cfg.PostBatchSize = defaultPostBatchSize
	}
	if cfg.NotificationLimit <= 0 {
		cfg.NotificationLimit = defaultNotificationLimit
	}

	s := &Service{
		relays:   relays,
		cache:    c,
		identity: identity,
		cfg:      cfg,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.codec = codec.New(identity, append([]codec.Option{codec.WithClock(s.now)}, s.codecOpts...)...)
	return s
}

func (s *Service) Connect(ctx context.Context) error {
	return s.relays.Connect(ctx)
}

func (s *Service) Disconnect() {
	s.relays.Disconnect()
}

func (s *Service) PublishEvent(ctx context.Context, event nostr.Event) error {
	return s.relays.Publish(ctx, event)
}

func (s *Service) Relays() []domain.Relay {
	return s.relays.Relays()
}

// RelayHistory returns the recent relay state transitions, oldest first.
func (s *Service) RelayHistory() []domain.RelayTransition {
	return s.relays.History()
}

func (s *Service) ConnectedCount() int {
	return s.relays.ConnectedCount()
}

func (s *Service) AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error) {
	return s.relays.AddRelay(ctx, url, read, write)
}

func (s *Service) RemoveRelay(url string) error {
	return s.relays.RemoveRelay(url)
}

func (s *Service) Identity() *domain.Identity {
	return s.identity
}

// ClearCache drops boards, threads and posts. Subscriptions and notifications stay.
func (s *Service) ClearCache() {
	s.cache.ClearCache()
	logger.Log.Info("content cache cleared", "component", "service")
}

// bestEffortPublish mirrors a locally durable change to the relays; failure is only logged.
func (s *Service) bestEffortPublish(ctx context.Context, event nostr.Event, what string) {
	if err := s.relays.Publish(ctx, event); err != nil {
		logger.Log.Warn("best-effort publish failed, kept locally",
			"component", "service",
			"what", what,
			"event_id", event.ID,
			"error", err)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
