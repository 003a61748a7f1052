package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

type failingStore struct {
	*store.Memory
	err error
}

func (f *failingStore) SetItem(key, value string) error {
	return f.err
}

func at(sec int64) time.Time {
	return time.Unix(sec, 0)
}

func thread(id, board string, created int64) domain.Thread {
	return domain.Thread{Id: id, BoardId: board, Title: "title " + id, CreatedAt: at(created)}
}

func post(id, threadId string, created int64) domain.Post {
	return domain.Post{Id: id, ThreadId: threadId, Content: "post " + id, CreatedAt: at(created)}
}

// --- Tests ---

func TestAddBoard_ShortNameFirstSeenWins(t *testing.T) {
	c := New(store.NewMemory())

	first, added := c.AddBoard(domain.Board{Id: "ev1", ShortName: "tech", Name: "Technology"})
	require.True(t, added)
	assert.Equal(t, "Technology", first.Name)

	kept, added := c.AddBoard(domain.Board{Id: "ev2", ShortName: "tech", Name: "Tech (dup)"})
	assert.False(t, added)
	assert.Equal(t, "ev1", kept.Id)

	c.AddBoard(domain.Board{Id: "ev3", ShortName: "b", Name: "Random"})

	boards := c.GetAllBoards()
	require.Len(t, boards, 2)
	assert.Equal(t, "b", boards[0].ShortName)
	assert.Equal(t, "tech", boards[1].ShortName)

	_, ok := c.GetBoard("ev2")
	assert.False(t, ok)
	b, ok := c.GetBoardByShortName("tech")
	require.True(t, ok)
	assert.Equal(t, "ev1", b.Id)
}

func TestBoardThreadCount(t *testing.T) {
	c := New(store.NewMemory())
	c.AddBoard(domain.Board{Id: "ev1", ShortName: "tech"})
	c.AddThread(thread("t1", "tech", 10))
	c.AddThread(thread("t2", "ev1", 20))
	c.AddThread(thread("t2", "ev1", 20)) // re-adding is not a new thread

	b, ok := c.GetBoard("ev1")
	require.True(t, ok)
	assert.Equal(t, 2, b.ThreadCount)
}

func TestAddThread_IndexDeduplicatedAndSorted(t *testing.T) {
	c := New(store.NewMemory())
	c.AddThread(thread("old", "tech", 100))
	c.AddThread(thread("new", "tech", 300))
	c.AddThread(thread("mid", "tech", 200))
	c.AddThread(thread("mid", "tech", 200))
	c.AddThread(thread("other", "b", 400))

	threads := c.GetThreadsByBoard("tech")
	require.Len(t, threads, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{threads[0].Id, threads[1].Id, threads[2].Id})

	// a reply bumps the old thread to the top
	c.AddPost(post("p1", "old", 500))
	threads = c.GetThreadsByBoard("tech")
	assert.Equal(t, "old", threads[0].Id)

	assert.Empty(t, c.GetThreadsByBoard("nope"))
}

func TestAddThread_StatsWithoutReplies(t *testing.T) {
	c := New(store.NewMemory())
	got := c.AddThread(domain.Thread{Id: "t1", BoardId: "tech", CreatedAt: at(100), ReplyCount: 7})

	assert.Equal(t, 0, got.ReplyCount)
	assert.Equal(t, at(100), got.LastReplyTime)
}

func TestAddPost_OrderingAndThreadStats(t *testing.T) {
	c := New(store.NewMemory())
	c.AddThread(thread("T", "tech", 50))

	c.AddPost(post("P1", "T", 100))
	c.AddPost(post("P2", "T", 200))

	posts := c.GetPostsByThread("T")
	require.Len(t, posts, 2)
	assert.Equal(t, "P1", posts[0].Id)
	assert.Equal(t, "P2", posts[1].Id)

	th, ok := c.GetThread("T")
	require.True(t, ok)
	assert.Equal(t, 2, th.ReplyCount)
	assert.Equal(t, at(200), th.LastReplyTime)
}

func TestAddPost_OutOfOrderAndDuplicates(t *testing.T) {
	c := New(store.NewMemory())
	c.AddThread(thread("T", "tech", 50))

	c.AddPost(post("P2", "T", 200))
	c.AddPost(post("P1", "T", 100))
	c.AddPost(post("P2", "T", 200)) // relay echo of a known post

	posts := c.GetPostsByThread("T")
	require.Len(t, posts, 2)
	assert.Equal(t, "P1", posts[0].Id)

	th, _ := c.GetThread("T")
	assert.Equal(t, 2, th.ReplyCount)
	assert.Equal(t, at(200), th.LastReplyTime)
}

func TestPostsBeforeThread(t *testing.T) {
	c := New(store.NewMemory())
	c.AddPost(post("P1", "T", 100))
	c.AddPost(post("P2", "T", 300))

	th := c.AddThread(thread("T", "tech", 50))
	assert.Equal(t, 2, th.ReplyCount)
	assert.Equal(t, at(300), th.LastReplyTime)
}

func TestRecomputeThreadStats_Overwrites(t *testing.T) {
	c := New(store.NewMemory())
	c.AddThread(thread("T", "tech", 50))
	c.AddPost(post("P1", "T", 100))
	c.AddPost(post("P2", "T", 200))

	th, ok := c.RecomputeThreadStats("T")
	require.True(t, ok)
	assert.Equal(t, 2, th.ReplyCount)
	th, _ = c.RecomputeThreadStats("T")
	assert.Equal(t, 2, th.ReplyCount, "recompute must not accumulate")

	_, ok = c.RecomputeThreadStats("missing")
	assert.False(t, ok)
}

func TestClearCache_KeepsDurableEntities(t *testing.T) {
	c := New(store.NewMemory())
	c.AddBoard(domain.Board{Id: "b1", ShortName: "tech"})
	c.AddThread(thread("T", "tech", 50))
	c.AddPost(post("P1", "T", 100))
	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s1", ThreadId: "T"}))
	require.NoError(t, c.AddNotification(domain.Notification{Id: "n1", ThreadId: "T"}))

	c.ClearCache()

	assert.Empty(t, c.GetAllBoards())
	assert.Empty(t, c.GetThreadsByBoard("tech"))
	assert.Empty(t, c.GetPostsByThread("T"))
	_, ok := c.GetPost("P1")
	assert.False(t, ok)

	assert.Len(t, c.GetSubscriptions(), 1)
	assert.Len(t, c.GetNotifications(true, 0), 1)
}

func TestSubscriptions_PersistAndLoad(t *testing.T) {
	s := store.NewMemory()
	c := New(s)

	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s1", ThreadId: "T1", CreatedAt: at(10)}))
	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s2", ThreadId: "T2", CreatedAt: at(20)}))

	sub, ok := c.GetSubscriptionByThread("T2")
	require.True(t, ok)
	assert.Equal(t, "s2", sub.Id)

	require.NoError(t, c.RemoveSubscription("s1"))
	assert.ErrorIs(t, c.RemoveSubscription("s1"), internal_errors.ErrSubscriptionNotFound)

	reloaded := New(s)
	require.NoError(t, reloaded.Load())
	subs := reloaded.GetSubscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "s2", subs[0].Id)
	_, ok = reloaded.GetSubscriptionByThread("T1")
	assert.False(t, ok)
}

func TestSubscriptions_OnePerThread(t *testing.T) {
	c := New(store.NewMemory())
	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s1", ThreadId: "T"}))
	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s2", ThreadId: "T"}))

	subs := c.GetSubscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "s2", subs[0].Id)
}

func TestNotifications_ReadState(t *testing.T) {
	s := store.NewMemory()
	c := New(s)
	require.NoError(t, c.AddNotification(domain.Notification{Id: "n1", CreatedAt: at(10)}))
	require.NoError(t, c.AddNotification(domain.Notification{Id: "n2", CreatedAt: at(30)}))
	require.NoError(t, c.AddNotification(domain.Notification{Id: "n3", CreatedAt: at(20)}))

	assert.Equal(t, 3, c.UnreadNotificationCount())

	all := c.GetNotifications(true, 0)
	assert.Equal(t, []string{"n2", "n3", "n1"}, []string{all[0].Id, all[1].Id, all[2].Id})
	assert.Len(t, c.GetNotifications(true, 2), 2)

	require.NoError(t, c.MarkNotificationRead("n2", at(40)))
	assert.ErrorIs(t, c.MarkNotificationRead("missing", at(40)), internal_errors.ErrNotificationNotFound)
	assert.Equal(t, 2, c.UnreadNotificationCount())
	unread := c.GetNotifications(false, 0)
	assert.Len(t, unread, 2)

	changed, err := c.MarkAllNotificationsRead(at(50))
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, 0, c.UnreadNotificationCount())
	for _, n := range c.GetNotifications(true, 0) {
		assert.True(t, n.Read)
		require.NotNil(t, n.ReadAt)
	}

	reloaded := New(s)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 0, reloaded.UnreadNotificationCount())
	assert.Len(t, reloaded.GetNotifications(true, 0), 3)

	require.NoError(t, reloaded.ClearNotifications())
	assert.Empty(t, reloaded.GetNotifications(true, 0))
}

func TestClaimReplyNotification(t *testing.T) {
	s := store.NewMemory()
	c := New(s)
	require.NoError(t, c.AddSubscription(domain.ThreadSubscription{Id: "s1", ThreadId: "T"}))

	first, err := c.ClaimReplyNotification("T", "p1")
	require.NoError(t, err)
	assert.True(t, first)
	again, err := c.ClaimReplyNotification("T", "p1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, c.ClearNotifications())
	reloaded := New(s)
	require.NoError(t, reloaded.Load())
	again, err = reloaded.ClaimReplyNotification("T", "p1")
	require.NoError(t, err)
	assert.False(t, again, "claims survive clear and restart")

	require.NoError(t, reloaded.RemoveSubscription("s1"))
	first, err = reloaded.ClaimReplyNotification("T", "p1")
	require.NoError(t, err)
	assert.True(t, first, "unsubscribing forgets the thread's claims")
}

func TestDurableMutation_StoreFailure(t *testing.T) {
	storeErr := errors.New("disk full")
	c := New(&failingStore{Memory: store.NewMemory(), err: storeErr})

	err := c.AddSubscription(domain.ThreadSubscription{Id: "s1", ThreadId: "T"})
	assert.ErrorIs(t, err, storeErr)
	err = c.AddNotification(domain.Notification{Id: "n1"})
	assert.ErrorIs(t, err, storeErr)
}

func TestLoad_CorruptedStore(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.SetItem(store.KeySubscriptions, "{broken"))

	assert.Error(t, New(s).Load())
}
