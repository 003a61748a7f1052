package cache

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/errors"
)

// --- subscriptions ---

// AddSubscription stores s, replacing any other subscription on the same thread, and persists.
func (c *Cache) AddSubscription(s domain.ThreadSubscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.subsByThread[s.ThreadId]; ok && prev != s.Id {
		delete(c.subscriptions, prev)
	}
	c.subscriptions[s.Id] = s
	c.subsByThread[s.ThreadId] = s.Id
	return c.persistSubscriptionsLocked()
}

func (c *Cache) RemoveSubscription(id domain.SubscriptionId) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subscriptions[id]
	if !ok {
		return errors.ErrSubscriptionNotFound
	}
	delete(c.subscriptions, id)
	if c.subsByThread[s.ThreadId] == id {
		delete(c.subsByThread, s.ThreadId)
	}
	if err := c.persistSubscriptionsLocked(); err != nil {
		return err
	}
	if _, ok := c.notifiedPosts[s.ThreadId]; !ok {
		return nil
	}
	delete(c.notifiedPosts, s.ThreadId)
	return c.persistNotifiedPostsLocked()
}

func (c *Cache) GetSubscription(id domain.SubscriptionId) (domain.ThreadSubscription, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.subscriptions[id]
	return s, ok
}

func (c *Cache) GetSubscriptionByThread(threadId domain.ThreadId) (domain.ThreadSubscription, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.subsByThread[threadId]
	if !ok {
		return domain.ThreadSubscription{}, false
	}
	s, ok := c.subscriptions[id]
	return s, ok
}

// GetSubscriptions returns subscriptions newest first.
func (c *Cache) GetSubscriptions() []domain.ThreadSubscription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedSubscriptionsLocked()
}

func (c *Cache) sortedSubscriptionsLocked() []domain.ThreadSubscription {
	subs := make([]domain.ThreadSubscription, 0, len(c.subscriptions))
	for _, s := range c.subscriptions {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].Id < subs[j].Id
		}
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs
}

func (c *Cache) persistSubscriptionsLocked() error {
	if err := store.SetJSON(c.store, store.KeySubscriptions, c.sortedSubscriptionsLocked()); err != nil {
		return fmt.Errorf("failed to persist subscriptions: %w", err)
	}
	return nil
}

// --- notifications ---

func (c *Cache) AddNotification(n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.notifications[n.Id]; !ok {
		c.notificationIds = append(c.notificationIds, n.Id)
	}
	c.notifications[n.Id] = n
	return c.persistNotificationsLocked()
}

// GetNotifications returns notifications newest first. limit <= 0 means no limit.
func (c *Cache) GetNotifications(includeRead bool, limit int) []domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]domain.Notification, 0, len(c.notifications))
	for _, id := range c.notificationIds {
		n := c.notifications[id]
		if !includeRead && n.Read {
			continue
		}
		result = append(result, n)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (c *Cache) MarkNotificationRead(id domain.NotificationId, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.notifications[id]
	if !ok {
		return errors.ErrNotificationNotFound
	}
	if n.Read {
		return nil
	}
	n.Read = true
	n.ReadAt = &at
	c.notifications[id] = n
	return c.persistNotificationsLocked()
}

// MarkAllNotificationsRead returns how many notifications changed state.
func (c *Cache) MarkAllNotificationsRead(at time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := 0
	for id, n := range c.notifications {
		if n.Read {
			continue
		}
		readAt := at
		n.Read = true
		n.ReadAt = &readAt
		c.notifications[id] = n
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, c.persistNotificationsLocked()
}

func (c *Cache) UnreadNotificationCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, n := range c.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// ClaimReplyNotification records that postId of threadId has been notified about.
// It reports false when the post was claimed before. Claims outlive ClearNotifications
// and are dropped with the thread's subscription.
func (c *Cache) ClaimReplyNotification(threadId domain.ThreadId, postId domain.PostId) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.notifiedPosts[threadId], postId) {
		return false, nil
	}
	c.notifiedPosts[threadId] = append(c.notifiedPosts[threadId], postId)
	return true, c.persistNotifiedPostsLocked()
}

func (c *Cache) persistNotifiedPostsLocked() error {
	if err := store.SetJSON(c.store, store.KeyNotifiedPosts, c.notifiedPosts); err != nil {
		return fmt.Errorf("failed to persist notified posts: %w", err)
	}
	return nil
}

// ClearNotifications is the only way notifications are ever deleted.
func (c *Cache) ClearNotifications() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = make(map[domain.NotificationId]domain.Notification)
	c.notificationIds = nil
	return c.persistNotificationsLocked()
}

func (c *Cache) persistNotificationsLocked() error {
	list := make([]domain.Notification, 0, len(c.notificationIds))
	for _, id := range c.notificationIds {
		list = append(list, c.notifications[id])
	}
	if err := store.SetJSON(c.store, store.KeyNotifications, list); err != nil {
		return fmt.Errorf("failed to persist notifications: %w", err)
	}
	return nil
}
