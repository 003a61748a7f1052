package service

import (
	"context"
	"fmt"

	"github.com/0xrinegade/4ochan/internal/codec"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
)

// SubscribeToThread is idempotent: an existing subscription for the thread is returned
// as is. The relay mirror is best effort, so subscribing works offline.
func (s *Service) SubscribeToThread(ctx context.Context, threadId domain.ThreadId, notifyOnReplies, notifyOnMentions bool) (domain.ThreadSubscription, error) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if existing, ok := s.cache.GetSubscriptionByThread(threadId); ok {
		return existing, nil
	}

	thread, err := s.lookupThread(ctx, threadId)
	if err != nil {
		return domain.ThreadSubscription{}, err
	}

	createdAt := s.now()
	event, err := s.codec.EncodeSubscription(threadId, notifyOnReplies, notifyOnMentions, createdAt)
	if err != nil {
		return domain.ThreadSubscription{}, err
	}
	s.bestEffortPublish(ctx, event, "subscription")

	sub := domain.ThreadSubscription{
		Id:               event.ID,
		ThreadId:         threadId,
		Title:            thread.Title,
		NotifyOnReplies:  notifyOnReplies,
		NotifyOnMentions: notifyOnMentions,
		CreatedAt:        createdAt,
	}
	if err := s.cache.AddSubscription(sub); err != nil {
		return domain.ThreadSubscription{}, fmt.Errorf("failed to save subscription: %w", err)
	}

	s.notify("Subscribed to thread", fmt.Sprintf("You will be notified about activity in %q", thread.Title), threadId, "")
	logger.Log.Info("subscribed to thread", "component", "service", "thread_id", threadId, "subscription_id", sub.Id)
	return sub, nil
}

// lookupThread resolves a thread from the cache, or from relays when a pool is open.
func (s *Service) lookupThread(ctx context.Context, threadId domain.ThreadId) (domain.Thread, error) {
	if t, ok := s.cache.GetThread(threadId); ok {
		return t, nil
	}
	if !s.relays.IsOpen() {
		return domain.Thread{}, internal_errors.ErrThreadNotFound
	}
	t, err := s.GetThread(ctx, threadId)
	if err != nil {
		return domain.Thread{}, err
	}
	if t == nil {
		return domain.Thread{}, internal_errors.ErrThreadNotFound
	}
	return *t, nil
}

func (s *Service) UnsubscribeFromThread(ctx context.Context, id domain.SubscriptionId) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	sub, ok := s.cache.GetSubscription(id)
	if !ok {
		return internal_errors.ErrSubscriptionNotFound
	}

	event, err := s.codec.EncodeRetraction(sub.Id, codec.KindSubscription, "unsubscribed")
	if err != nil {
		return err
	}
	s.bestEffortPublish(ctx, event, "unsubscription")

	if err := s.cache.RemoveSubscription(id); err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}

	s.notify("Unsubscribed from thread", fmt.Sprintf("You will no longer be notified about %q", sub.Title), sub.ThreadId, "")
	logger.Log.Info("unsubscribed from thread", "component", "service", "thread_id", sub.ThreadId, "subscription_id", id)
	return nil
}

func (s *Service) GetThreadSubscriptions() []domain.ThreadSubscription {
	return s.cache.GetSubscriptions()
}

func (s *Service) IsSubscribedToThread(threadId domain.ThreadId) bool {
	_, ok := s.cache.GetSubscriptionByThread(threadId)
	return ok
}
