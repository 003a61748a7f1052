package cache

import (
	"sort"

	"github.com/0xrinegade/4ochan/shared/domain"
)

// AddPost stores p and indexes it under its thread. A post seen for the first time
// bumps the cached thread's reply count and last reply time.
func (c *Cache) AddPost(p domain.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, known := c.posts[p.Id]
	c.posts[p.Id] = p
	c.postsByThread[p.ThreadId] = appendUnique(c.postsByThread[p.ThreadId], p.Id)
	if known {
		return
	}
	if t, ok := c.threads[p.ThreadId]; ok {
		t.ReplyCount++
		t.LastReplyTime = maxTime(maxTime(t.LastReplyTime, t.CreatedAt), p.CreatedAt)
		c.threads[p.ThreadId] = t
	}
}

func (c *Cache) GetPost(id domain.PostId) (domain.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[id]
	return p, ok
}

// GetPostsByThread returns the thread's posts in chronological order.
func (c *Cache) GetPostsByThread(threadId domain.ThreadId) []domain.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.postsByThread[threadId]
	posts := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.posts[id]; ok {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
	return posts
}
