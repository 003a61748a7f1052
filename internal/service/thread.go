package service

import (
	"context"
	"fmt"

	"github.com/0xrinegade/4ochan/internal/codec"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
	"github.com/0xrinegade/4ochan/shared/utils"
)

// GetThreadsByBoard returns cached threads when there are any. Otherwise it queries
// the board's threads and their posts in batches, most recently active first.
func (s *Service) GetThreadsByBoard(ctx context.Context, boardId domain.BoardId) ([]domain.Thread, error) {
	if cached := s.cache.GetThreadsByBoard(boardId); len(cached) > 0 {
		return cached, nil
	}
	if !s.relays.IsOpen() {
		return nil, internal_errors.ErrNotConnected
	}

	events, err := s.relays.Query(ctx, codec.ThreadsByBoardFilter(boardId))
	if err != nil {
		return nil, fmt.Errorf("failed to query threads of board %s: %w", boardId, err)
	}

	var ids []domain.ThreadId
	for _, t := range codec.DecodeThreads(events) {
		if t.BoardId != boardId {
			continue
		}
		s.cache.AddThread(t)
		ids = append(ids, t.Id)
	}
	if err := s.fetchPosts(ctx, ids); err != nil {
		return nil, err
	}

	return s.cache.GetThreadsByBoard(boardId), nil
}

// GetThread returns nil without an error when no relay knows the thread.
func (s *Service) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if t, ok := s.cache.GetThread(id); ok {
		return &t, nil
	}
	if !s.relays.IsOpen() {
		return nil, internal_errors.ErrNotConnected
	}

	events, err := s.relays.Query(ctx, codec.ThreadFilter(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query thread %s: %w", id, err)
	}
	var found *domain.Thread
	for _, t := range codec.DecodeThreads(events) {
		if t.Id == id {
			found = &t
			break
		}
	}
	if found == nil {
		return nil, nil
	}

	s.cache.AddThread(*found)
	if err := s.fetchPosts(ctx, []domain.ThreadId{id}); err != nil {
		return nil, err
	}
	t, _ := s.cache.GetThread(id)
	return &t, nil
}

// fetchPosts loads every post of threadIds with one query per batch and overwrites
// the threads' reply stats from the result.
func (s *Service) fetchPosts(ctx context.Context, threadIds []domain.ThreadId) error {
	for start := 0; start < len(threadIds); start += s.cfg.PostBatchSize {
		end := min(start+s.cfg.PostBatchSize, len(threadIds))
		batch := threadIds[start:end]

		events, err := s.relays.Query(ctx, codec.PostsByThreadsFilter(batch))
		if err != nil {
			return fmt.Errorf("failed to query posts of %d threads: %w", len(batch), err)
		}

		wanted := make(map[domain.ThreadId]struct{}, len(batch))
		for _, id := range batch {
			wanted[id] = struct{}{}
		}
		byThread := make(map[domain.ThreadId][]domain.Post, len(batch))
		for _, p := range codec.DecodePosts(events) {
			if _, ok := wanted[p.ThreadId]; !ok {
				continue
			}
			s.cache.AddPost(p)
			byThread[p.ThreadId] = append(byThread[p.ThreadId], p)
		}

		for _, id := range batch {
			s.cache.RecomputeThreadStats(id)
			s.detectReplies(id, byThread[id])
		}
		logger.Log.Debug("posts fetched", "component", "service", "threads", len(batch), "events", len(events))
	}
	return nil
}

// CreateThread publishes the thread and returns it from the local echo, not from a relay.
func (s *Service) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if err := utils.ValidateStruct(data); err != nil {
		return domain.Thread{}, err
	}

	event, err := s.codec.EncodeThread(data)
	if err != nil {
		return domain.Thread{}, err
	}
	if err := s.relays.Publish(ctx, event); err != nil {
		return domain.Thread{}, err
	}

	thread := s.cache.AddThread(domain.Thread{
		Id:           event.ID,
		BoardId:      data.BoardId,
		Title:        data.Title,
		Content:      data.Content,
		Images:       nonNil(data.Images),
		Media:        nonNil(data.Media),
		AuthorPubkey: event.PubKey,
		CreatedAt:    event.CreatedAt.Time(),
	})
	logger.Log.Info("thread created", "component", "service", "board", data.BoardId, "thread_id", thread.Id)
	return thread, nil
}
