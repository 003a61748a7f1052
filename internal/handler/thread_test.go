package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
)

func TestGetThreads(t *testing.T) {
	var gotBoard string
	svc := &MockService{
		MockGetThreadsByBoard: func(ctx context.Context, boardId domain.BoardId) ([]domain.Thread, error) {
			gotBoard = boardId
			return []domain.Thread{{Id: "t1", BoardId: boardId, ReplyCount: 3}}, nil
		},
	}
	router := newRouter(New(svc, upperRenderer{}))

	rr := do(t, router, http.MethodGet, "/boards/b1/threads", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "b1", gotBoard)
	resp := decode[api.ThreadsResponse](t, rr)
	require.Len(t, resp.Threads, 1)
	assert.Equal(t, 3, resp.Threads[0].ReplyCount)
}

func TestCreateThread(t *testing.T) {
	t.Run("board comes from the path", func(t *testing.T) {
		var got domain.ThreadCreationData
		svc := &MockService{
			MockCreateThread: func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
				got = data
				return domain.Thread{Id: "t1", BoardId: data.BoardId, Title: data.Title}, nil
			},
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodPost, "/boards/b1/threads", []byte(`{"title":"Hello","content":"first","images":["https://img.example/a.png"]}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "b1", got.BoardId)
		assert.Equal(t, "Hello", got.Title)
		assert.Equal(t, []string{"https://img.example/a.png"}, got.Images)
	})

	t.Run("missing title", func(t *testing.T) {
		router := newRouter(New(&MockService{}, upperRenderer{}))

		rr := do(t, router, http.MethodPost, "/boards/b1/threads", []byte(`{"content":"first"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetThread(t *testing.T) {
	t.Run("found with subscription flag", func(t *testing.T) {
		svc := &MockService{
			MockGetThread: func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
				return &domain.Thread{Id: id, Title: "Hello"}, nil
			},
			MockIsSubscribedToThread: func(threadId domain.ThreadId) bool { return threadId == "t1" },
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodGet, "/threads/t1", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.ThreadResponse](t, rr)
		assert.Equal(t, "t1", resp.Id)
		assert.True(t, resp.Subscribed)
	})

	t.Run("not found", func(t *testing.T) {
		router := newRouter(New(&MockService{}, upperRenderer{}))

		rr := do(t, router, http.MethodGet, "/threads/missing", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("offline", func(t *testing.T) {
		svc := &MockService{
			MockGetThread: func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
				return nil, internal_errors.ErrNotConnected
			},
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodGet, "/threads/t1", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestGetPosts(t *testing.T) {
	t.Run("rendered html next to raw content", func(t *testing.T) {
		svc := &MockService{
			MockGetPostsByThread: func(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
				return []domain.Post{{Id: "p1", ThreadId: threadId, Content: "hi"}}, nil
			},
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodGet, "/threads/t1/posts", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.PostsResponse](t, rr)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "hi", resp.Posts[0].Content)
		assert.Equal(t, "<p>HI</p>", resp.Posts[0].HTML)
	})

	t.Run("render failure keeps the post", func(t *testing.T) {
		svc := &MockService{
			MockGetPostsByThread: func(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
				return []domain.Post{{Id: "p1", Content: "hi"}}, nil
			},
		}
		router := newRouter(New(svc, upperRenderer{fail: true}))

		rr := do(t, router, http.MethodGet, "/threads/t1/posts", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.PostsResponse](t, rr)
		require.Len(t, resp.Posts, 1)
		assert.Empty(t, resp.Posts[0].HTML)
	})

	t.Run("empty list is not null", func(t *testing.T) {
		router := newRouter(New(&MockService{}, upperRenderer{}))

		rr := do(t, router, http.MethodGet, "/threads/t1/posts", nil)

		assert.JSONEq(t, `{"posts":[]}`, rr.Body.String())
	})
}

func TestCreatePost(t *testing.T) {
	t.Run("successful", func(t *testing.T) {
		var got domain.PostCreationData
		svc := &MockService{
			MockCreatePost: func(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
				got = data
				return domain.Post{Id: "p2", ThreadId: data.ThreadId, Content: data.Content, References: data.References}, nil
			},
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodPost, "/threads/t1/posts", []byte(`{"content":"reply","references":["p1"]}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "t1", got.ThreadId)
		assert.Equal(t, []string{"p1"}, got.References)
		resp := decode[api.PostResponse](t, rr)
		assert.Equal(t, "<p>REPLY</p>", resp.HTML)
	})

	t.Run("all relays rejected", func(t *testing.T) {
		svc := &MockService{
			MockCreatePost: func(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
				return domain.Post{}, internal_errors.ErrPublishFailed
			},
		}
		router := newRouter(New(svc, upperRenderer{}))

		rr := do(t, router, http.MethodPost, "/threads/t1/posts", []byte(`{"content":"reply"}`))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
