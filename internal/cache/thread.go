package cache

import (
	"sort"
	"time"

	"github.com/0xrinegade/4ochan/shared/domain"
)

// AddThread stores t and indexes it under its board. Reply stats are derived
// from the posts already cached for the thread, never taken from t.
func (c *Cache) AddThread(t domain.Thread) domain.Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads[t.Id] = t
	c.threadsByBoard[t.BoardId] = appendUnique(c.threadsByBoard[t.BoardId], t.Id)
	return c.recomputeLocked(t.Id)
}

func (c *Cache) GetThread(id domain.ThreadId) (domain.Thread, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.threads[id]
	return t, ok
}

// GetThreadsByBoard returns the board's threads, most recently active first.
func (c *Cache) GetThreadsByBoard(boardId domain.BoardId) []domain.Thread {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.threadsByBoard[boardId]
	threads := make([]domain.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := c.threads[id]; ok {
			threads = append(threads, t)
		}
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastActivity().After(threads[j].LastActivity())
	})
	return threads
}

// RecomputeThreadStats overwrites reply count and last reply time from the post index.
func (c *Cache) RecomputeThreadStats(id domain.ThreadId) (domain.Thread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.threads[id]; !ok {
		return domain.Thread{}, false
	}
	return c.recomputeLocked(id), true
}

func (c *Cache) recomputeLocked(id domain.ThreadId) domain.Thread {
	t := c.threads[id]
	count := 0
	last := t.CreatedAt
	for _, postId := range c.postsByThread[id] {
		p, ok := c.posts[postId]
		if !ok {
			continue
		}
		count++
		if p.CreatedAt.After(last) {
			last = p.CreatedAt
		}
	}
	t.ReplyCount = count
	t.LastReplyTime = last
	c.threads[id] = t
	return t
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
