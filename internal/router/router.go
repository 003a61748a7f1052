package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xrinegade/4ochan/internal/handler"
	"github.com/0xrinegade/4ochan/shared/config"
	mw "github.com/0xrinegade/4ochan/shared/middleware"
	"github.com/0xrinegade/4ochan/shared/middleware/metrics"
)

// New builds the local api. Publishing routes share one per-ip limiter.
func New(h *handler.Handler, cfg config.Http) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/identity", h.GetIdentity)

		r.Post("/connect", h.Connect)
		r.Post("/disconnect", h.Disconnect)
		r.Get("/relays", h.GetRelays)
		r.Get("/relays/history", h.GetRelayHistory)
		r.Post("/relays", h.AddRelay)
		r.Delete("/relays", h.RemoveRelay)

		r.Get("/boards", h.GetBoards)
		r.Get("/boards/{board}/threads", h.GetThreads)
		r.Get("/threads/{thread}", h.GetThread)
		r.Get("/threads/{thread}/posts", h.GetPosts)

		r.Get("/subscriptions", h.GetSubscriptions)
		r.Get("/threads/{thread}/subscription", h.SubscriptionStatus)
		r.Delete("/subscriptions/{id}", h.Unsubscribe)

		r.Get("/notifications", h.GetNotifications)
		r.Get("/notifications/unread_count", h.GetUnreadCount)
		r.Post("/notifications/read_all", h.MarkAllNotificationsRead)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)
		r.Delete("/notifications", h.ClearNotifications)

		// every route below signs and publishes an event
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(cfg.WritesPerMin, time.Minute))
			r.Post("/boards", h.CreateBoard)
			r.Post("/boards/{board}/threads", h.CreateThread)
			r.Post("/threads/{thread}/posts", h.CreatePost)
			r.Post("/threads/{thread}/subscription", h.Subscribe)
		})
	})

	return r
}
