// Package cache indexes decoded boards, threads and posts in memory and keeps
// thread subscriptions and notifications mirrored into the persistent store.
package cache

import (
	"slices"
	"sort"
	"sync"

	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/logger"
)

type Cache struct {
	mu sync.RWMutex

	boards          map[domain.BoardId]domain.Board
	boardsByShort   map[domain.BoardShortName]domain.BoardId
	threads         map[domain.ThreadId]domain.Thread
	threadsByBoard  map[domain.BoardId][]domain.ThreadId
	posts           map[domain.PostId]domain.Post
	postsByThread   map[domain.ThreadId][]domain.PostId
	subscriptions   map[domain.SubscriptionId]domain.ThreadSubscription
	subsByThread    map[domain.ThreadId]domain.SubscriptionId
	notifications   map[domain.NotificationId]domain.Notification
	notificationIds []domain.NotificationId // insertion order, for stable persistence
	notifiedPosts   map[domain.ThreadId][]domain.PostId

	store store.Store
}

func New(s store.Store) *Cache {
	c := &Cache{store: s}
	c.resetContent()
	c.subscriptions = make(map[domain.SubscriptionId]domain.ThreadSubscription)
	c.subsByThread = make(map[domain.ThreadId]domain.SubscriptionId)
	c.notifications = make(map[domain.NotificationId]domain.Notification)
	c.notifiedPosts = make(map[domain.ThreadId][]domain.PostId)
	return c
}

func (c *Cache) resetContent() {
	c.boards = make(map[domain.BoardId]domain.Board)
	c.boardsByShort = make(map[domain.BoardShortName]domain.BoardId)
	c.threads = make(map[domain.ThreadId]domain.Thread)
	c.threadsByBoard = make(map[domain.BoardId][]domain.ThreadId)
	c.posts = make(map[domain.PostId]domain.Post)
	c.postsByThread = make(map[domain.ThreadId][]domain.PostId)
}

// Load restores subscriptions and notifications from the store.
func (c *Cache) Load() error {
	var subs []domain.ThreadSubscription
	if _, err := store.GetJSON(c.store, store.KeySubscriptions, &subs); err != nil {
		return err
	}
	var notifications []domain.Notification
	if _, err := store.GetJSON(c.store, store.KeyNotifications, &notifications); err != nil {
		return err
	}
	notified := make(map[domain.ThreadId][]domain.PostId)
	if _, err := store.GetJSON(c.store, store.KeyNotifiedPosts, &notified); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range subs {
		c.subscriptions[s.Id] = s
		c.subsByThread[s.ThreadId] = s.Id
	}
	for _, n := range notifications {
		if _, ok := c.notifications[n.Id]; !ok {
			c.notificationIds = append(c.notificationIds, n.Id)
		}
		c.notifications[n.Id] = n
	}
	for threadId, ids := range notified {
		c.notifiedPosts[threadId] = ids
	}
	logger.Log.Info("durable cache loaded",
		"component", "cache",
		"subscriptions", len(subs),
		"notifications", len(notifications))
	return nil
}

// ClearCache drops boards, threads and posts. Subscriptions and notifications survive.
func (c *Cache) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetContent()
}

// appendUnique appends id unless the index already holds it.
func appendUnique[T comparable](index []T, id T) []T {
	if slices.Contains(index, id) {
		return index
	}
	return append(index, id)
}

// --- boards ---

// AddBoard stores b unless a board with the same short name is already known.
// It returns the board that is cached for that short name.
func (c *Cache) AddBoard(b domain.Board) (domain.Board, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.boardsByShort[b.ShortName]; ok {
		return c.boards[id], false
	}
	c.boards[b.Id] = b
	c.boardsByShort[b.ShortName] = b.Id
	return b, true
}

func (c *Cache) GetBoard(id domain.BoardId) (domain.Board, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.boards[id]
	if ok {
		b.ThreadCount = c.countThreadsLocked(b)
	}
	return b, ok
}

func (c *Cache) GetBoardByShortName(shortName domain.BoardShortName) (domain.Board, bool) {
	c.mu.RLock()
	id, ok := c.boardsByShort[shortName]
	c.mu.RUnlock()
	if !ok {
		return domain.Board{}, false
	}
	return c.GetBoard(id)
}

func (c *Cache) GetAllBoards() []domain.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	boards := make([]domain.Board, 0, len(c.boards))
	for _, b := range c.boards {
		b.ThreadCount = c.countThreadsLocked(b)
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ShortName < boards[j].ShortName })
	return boards
}

// threads may point at a board by event id or by short name
func (c *Cache) countThreadsLocked(b domain.Board) int {
	n := 0
	for _, key := range []domain.BoardId{b.Id, b.ShortName} {
		for _, id := range c.threadsByBoard[key] {
			if _, ok := c.threads[id]; ok {
				n++
			}
		}
		if b.Id == b.ShortName {
			break
		}
	}
	return n
}
