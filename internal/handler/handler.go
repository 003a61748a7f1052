package handler

import (
	"context"
	"net/http"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/utils"
)

// Service is the facade surface the local API exposes.
type Service interface {
	Connect(ctx context.Context) error
	Disconnect()
	PublishEvent(ctx context.Context, event nostr.Event) error
	Relays() []domain.Relay
	RelayHistory() []domain.RelayTransition
	ConnectedCount() int
	AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error)
	RemoveRelay(url string) error
	Identity() *domain.Identity
	ClearCache()

	LoadBoards(ctx context.Context) ([]domain.Board, error)
	CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	GetThreadsByBoard(ctx context.Context, boardId domain.BoardId) ([]domain.Thread, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	GetPostsByThread(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error)
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error)

	SubscribeToThread(ctx context.Context, threadId domain.ThreadId, notifyOnReplies, notifyOnMentions bool) (domain.ThreadSubscription, error)
	UnsubscribeFromThread(ctx context.Context, id domain.SubscriptionId) error
	GetThreadSubscriptions() []domain.ThreadSubscription
	IsSubscribedToThread(threadId domain.ThreadId) bool

	GetNotifications(includeRead bool, limit int) []domain.Notification
	MarkNotificationRead(id domain.NotificationId) error
	MarkAllNotificationsRead() (int, error)
	GetUnreadNotificationCount() int
	ClearNotifications() error
}

// Renderer turns post content into safe HTML.
type Renderer interface {
	Render(content string) (string, error)
}

type Handler struct {
	svc Service
	md  Renderer
}

func New(svc Service, md Renderer) *Handler {
	return &Handler{svc: svc, md: md}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Connected: h.svc.ConnectedCount()})
}
