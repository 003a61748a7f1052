package setup

import (
	"fmt"

	"github.com/0xrinegade/4ochan/internal/cache"
	"github.com/0xrinegade/4ochan/internal/handler"
	"github.com/0xrinegade/4ochan/internal/identity"
	"github.com/0xrinegade/4ochan/internal/markdown"
	"github.com/0xrinegade/4ochan/internal/relay"
	"github.com/0xrinegade/4ochan/internal/service"
	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/internal/store/sqlstore"
	"github.com/0xrinegade/4ochan/shared/config"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/logger"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Store   store.Store
	Relays  *relay.Manager
	Service *service.Service
	Handler *handler.Handler
	Policy  relay.Policy

	cleanup func() error
}

// Cleanup releases the backing store. Relays are disconnected first.
func (d *Dependencies) Cleanup() error {
	d.Relays.Disconnect()
	if d.cleanup == nil {
		return nil
	}
	return d.cleanup()
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	backing, cleanup, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	s := store.Namespaced(backing, cfg.Public.Store.Namespace)

	fail := func(err error) (*Dependencies, error) {
		if cleanup != nil {
			cleanup()
		}
		return nil, err
	}

	id, err := identity.Load(s, cfg.PrivateKey())
	if err != nil {
		return fail(fmt.Errorf("failed to load identity: %w", err))
	}

	c := cache.New(s)
	if err := c.Load(); err != nil {
		return fail(fmt.Errorf("failed to load cache: %w", err))
	}

	rc := cfg.Public.Relays
	mgr, err := relay.NewManager(relay.NewNostrPool, s, relay.Options{
		ConnectTimeout: rc.ConnectTimeout,
		QueryTimeout:   rc.QueryTimeout,
		PublishTimeout: rc.PublishTimeout,
		Defaults:       defaultRelays(rc.Defaults),
		Migrations:     rc.Migrations,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to init relays: %w", err))
	}

	svc := service.New(mgr, c, id, service.Config{
		PostBatchSize:     cfg.Public.Service.PostBatchSize,
		NotificationLimit: cfg.Public.Service.NotificationLimit,
	})

	logger.Log.Info("dependencies ready", "component", "setup",
		"store", cfg.Public.Store.Driver, "relays", len(mgr.Relays()), "pubkey", id.PublicKey, "can_sign", id.CanSign())

	return &Dependencies{
		Store:   s,
		Relays:  mgr,
		Service: svc,
		Handler: handler.New(svc, markdown.New()),
		Policy: relay.Policy{
			AutoConnect:    rc.AutoConnect,
			AutoReconnect:  rc.AutoReconnect,
			ReconnectDelay: rc.ReconnectDelay,
		},
		cleanup: cleanup,
	}, nil
}

func openStore(cfg *config.Config) (store.Store, func() error, error) {
	sc := cfg.Public.Store
	switch sc.Driver {
	case "memory":
		return store.NewMemory(), nil, nil
	case sqlstore.DriverSQLite:
		s, err := sqlstore.New(sqlstore.DriverSQLite, sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Cleanup, nil
	case sqlstore.DriverPostgres:
		s, err := sqlstore.New(sqlstore.DriverPostgres, cfg.PgDSN())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", sc.Driver)
	}
}

func defaultRelays(entries []config.RelayEntry) []domain.Relay {
	relays := make([]domain.Relay, 0, len(entries))
	for _, e := range entries {
		relays = append(relays, domain.Relay{URL: e.URL, Read: e.Read, Write: e.Write, Status: domain.RelayDisconnected})
	}
	return relays
}
