package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/shared/domain"
)

type MockService struct {
	MockConnect        func(ctx context.Context) error
	MockRelays         func() []domain.Relay
	MockRelayHistory   func() []domain.RelayTransition
	MockConnectedCount func() int
	MockAddRelay       func(ctx context.Context, url string, read, write bool) (domain.Relay, error)
	MockRemoveRelay    func(url string) error
	MockIdentity       func() *domain.Identity

	MockLoadBoards        func(ctx context.Context) ([]domain.Board, error)
	MockCreateBoard       func(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	MockGetThreadsByBoard func(ctx context.Context, boardId domain.BoardId) ([]domain.Thread, error)
	MockGetThread         func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	MockCreateThread      func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	MockGetPostsByThread  func(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error)
	MockCreatePost        func(ctx context.Context, data domain.PostCreationData) (domain.Post, error)

	MockSubscribeToThread      func(ctx context.Context, threadId domain.ThreadId, replies, mentions bool) (domain.ThreadSubscription, error)
	MockUnsubscribeFromThread  func(ctx context.Context, id domain.SubscriptionId) error
	MockGetThreadSubscriptions func() []domain.ThreadSubscription
	MockIsSubscribedToThread   func(threadId domain.ThreadId) bool

	MockGetNotifications           func(includeRead bool, limit int) []domain.Notification
	MockMarkNotificationRead       func(id domain.NotificationId) error
	MockMarkAllNotificationsRead   func() (int, error)
	MockGetUnreadNotificationCount func() int
	MockClearNotifications         func() error

	disconnects int
}

func (m *MockService) Connect(ctx context.Context) error {
	if m.MockConnect != nil {
		return m.MockConnect(ctx)
	}
	return nil
}

func (m *MockService) Disconnect() { m.disconnects++ }

func (m *MockService) PublishEvent(ctx context.Context, event nostr.Event) error { return nil }

func (m *MockService) Relays() []domain.Relay {
	if m.MockRelays != nil {
		return m.MockRelays()
	}
	return nil
}

func (m *MockService) RelayHistory() []domain.RelayTransition {
	if m.MockRelayHistory != nil {
		return m.MockRelayHistory()
	}
	return nil
}

func (m *MockService) ConnectedCount() int {
	if m.MockConnectedCount != nil {
		return m.MockConnectedCount()
	}
	return 0
}

func (m *MockService) AddRelay(ctx context.Context, url string, read, write bool) (domain.Relay, error) {
	if m.MockAddRelay != nil {
		return m.MockAddRelay(ctx, url, read, write)
	}
	return domain.Relay{URL: url, Read: read, Write: write, Status: domain.RelayDisconnected}, nil
}

func (m *MockService) RemoveRelay(url string) error {
	if m.MockRemoveRelay != nil {
		return m.MockRemoveRelay(url)
	}
	return nil
}

func (m *MockService) Identity() *domain.Identity {
	if m.MockIdentity != nil {
		return m.MockIdentity()
	}
	return nil
}

func (m *MockService) ClearCache() {}

func (m *MockService) LoadBoards(ctx context.Context) ([]domain.Board, error) {
	if m.MockLoadBoards != nil {
		return m.MockLoadBoards(ctx)
	}
	return nil, nil
}

func (m *MockService) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	if m.MockCreateBoard != nil {
		return m.MockCreateBoard(ctx, data)
	}
	return domain.Board{ShortName: data.ShortName, Name: data.Name}, nil
}

func (m *MockService) GetThreadsByBoard(ctx context.Context, boardId domain.BoardId) ([]domain.Thread, error) {
	if m.MockGetThreadsByBoard != nil {
		return m.MockGetThreadsByBoard(ctx, boardId)
	}
	return nil, nil
}

func (m *MockService) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.MockGetThread != nil {
		return m.MockGetThread(ctx, id)
	}
	return nil, nil
}

func (m *MockService) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if m.MockCreateThread != nil {
		return m.MockCreateThread(ctx, data)
	}
	return domain.Thread{Id: "t1", BoardId: data.BoardId, Title: data.Title}, nil
}

func (m *MockService) GetPostsByThread(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	if m.MockGetPostsByThread != nil {
		return m.MockGetPostsByThread(ctx, threadId)
	}
	return nil, nil
}

func (m *MockService) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	if m.MockCreatePost != nil {
		return m.MockCreatePost(ctx, data)
	}
	return domain.Post{Id: "p1", ThreadId: data.ThreadId, Content: data.Content}, nil
}

func (m *MockService) SubscribeToThread(ctx context.Context, threadId domain.ThreadId, replies, mentions bool) (domain.ThreadSubscription, error) {
	if m.MockSubscribeToThread != nil {
		return m.MockSubscribeToThread(ctx, threadId, replies, mentions)
	}
	return domain.ThreadSubscription{Id: "s1", ThreadId: threadId, NotifyOnReplies: replies, NotifyOnMentions: mentions}, nil
}

func (m *MockService) UnsubscribeFromThread(ctx context.Context, id domain.SubscriptionId) error {
	if m.MockUnsubscribeFromThread != nil {
		return m.MockUnsubscribeFromThread(ctx, id)
	}
	return nil
}

func (m *MockService) GetThreadSubscriptions() []domain.ThreadSubscription {
	if m.MockGetThreadSubscriptions != nil {
		return m.MockGetThreadSubscriptions()
	}
	return nil
}

func (m *MockService) IsSubscribedToThread(threadId domain.ThreadId) bool {
	if m.MockIsSubscribedToThread != nil {
		return m.MockIsSubscribedToThread(threadId)
	}
	return false
}

func (m *MockService) GetNotifications(includeRead bool, limit int) []domain.Notification {
	if m.MockGetNotifications != nil {
		return m.MockGetNotifications(includeRead, limit)
	}
	return nil
}

func (m *MockService) MarkNotificationRead(id domain.NotificationId) error {
	if m.MockMarkNotificationRead != nil {
		return m.MockMarkNotificationRead(id)
	}
	return nil
}

func (m *MockService) MarkAllNotificationsRead() (int, error) {
	if m.MockMarkAllNotificationsRead != nil {
		return m.MockMarkAllNotificationsRead()
	}
	return 0, nil
}

func (m *MockService) GetUnreadNotificationCount() int {
	if m.MockGetUnreadNotificationCount != nil {
		return m.MockGetUnreadNotificationCount()
	}
	return 0
}

func (m *MockService) ClearNotifications() error {
	if m.MockClearNotifications != nil {
		return m.MockClearNotifications()
	}
	return nil
}

// upperRenderer stands in for the markdown pipeline.
type upperRenderer struct{ fail bool }

func (r upperRenderer) Render(content string) (string, error) {
	if r.fail {
		return "", errors.New("render failed")
	}
	return "<p>" + strings.ToUpper(content) + "</p>", nil
}
