package service

import (
	"fmt"
	"slices"

	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/logger"
)

// notify stores a locally synthesized notification for the current identity.
// Notifications never come from relays.
func (s *Service) notify(title, message string, threadId domain.ThreadId, postId domain.PostId) {
	n := domain.Notification{
		Id:              s.newID(),
		RecipientPubkey: s.identity.PublicKey,
		Title:           title,
		Message:         message,
		ThreadId:        threadId,
		PostId:          postId,
		CreatedAt:       s.now(),
	}
	if err := s.cache.AddNotification(n); err != nil {
		logger.Log.Error("failed to save notification", "component", "service", "title", title, "error", err)
	}
}

// detectReplies notifies about posts by others that arrived in a subscribed
// thread after the subscription. Each post is notified about at most once,
// even after the notifications were cleared.
func (s *Service) detectReplies(threadId domain.ThreadId, posts []domain.Post) {
	sub, ok := s.cache.GetSubscriptionByThread(threadId)
	if !ok || len(posts) == 0 || (!sub.NotifyOnReplies && !sub.NotifyOnMentions) {
		return
	}

	for _, p := range posts {
		if p.AuthorPubkey == s.identity.PublicKey || !p.CreatedAt.After(sub.CreatedAt) {
			continue
		}

		var title, message string
		switch {
		case sub.NotifyOnMentions && s.mentionsMe(p):
			title, message = "New mention", fmt.Sprintf("Someone replied to your post in %q", sub.Title)
		case sub.NotifyOnReplies:
			title, message = "New reply", fmt.Sprintf("New reply in %q", sub.Title)
		default:
			continue
		}

		first, err := s.cache.ClaimReplyNotification(threadId, p.Id)
		if err != nil {
			logger.Log.Error("failed to save notified post", "component", "service", "post_id", p.Id, "error", err)
		}
		if first {
			s.notify(title, message, threadId, p.Id)
		}
	}
}

func (s *Service) mentionsMe(p domain.Post) bool {
	return slices.ContainsFunc(p.References, func(ref domain.PostId) bool {
		own, ok := s.cache.GetPost(ref)
		return ok && own.AuthorPubkey == s.identity.PublicKey
	})
}

// GetNotifications returns notifications newest first; limit <= 0 uses the configured default.
func (s *Service) GetNotifications(includeRead bool, limit int) []domain.Notification {
	if limit <= 0 {
		limit = s.cfg.NotificationLimit
	}
	return s.cache.GetNotifications(includeRead, limit)
}

func (s *Service) MarkNotificationRead(id domain.NotificationId) error {
	return s.cache.MarkNotificationRead(id, s.now())
}

func (s *Service) MarkAllNotificationsRead() (int, error) {
	return s.cache.MarkAllNotificationsRead(s.now())
}

func (s *Service) GetUnreadNotificationCount() int {
	return s.cache.UnreadNotificationCount()
}

func (s *Service) ClearNotifications() error {
	return s.cache.ClearNotifications()
}
