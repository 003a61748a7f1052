package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/0xrinegade/4ochan/internal/markdown"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
	"github.com/0xrinegade/4ochan/shared/utils"
)

// GetPostsByThread refreshes the thread's posts from relays while connected.
// Offline it serves what is cached, failing only when nothing is.
func (s *Service) GetPostsByThread(ctx context.Context, threadId domain.ThreadId) ([]domain.Post, error) {
	if !s.relays.IsOpen() {
		if cached := s.cache.GetPostsByThread(threadId); len(cached) > 0 {
			return cached, nil
		}
		return nil, internal_errors.ErrNotConnected
	}

	if err := s.fetchPosts(ctx, []domain.ThreadId{threadId}); err != nil {
		return nil, err
	}
	return s.cache.GetPostsByThread(threadId), nil
}

func (s *Service) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.Post, error) {
	if err := utils.ValidateStruct(data); err != nil {
		return domain.Post{}, err
	}
	data.References = s.mergeContentReferences(data)

	event, err := s.codec.EncodePost(data)
	if err != nil {
		return domain.Post{}, err
	}
	if err := s.relays.Publish(ctx, event); err != nil {
		return domain.Post{}, fmt.Errorf("failed to publish post: %w", err)
	}

	post := domain.Post{
		Id:           event.ID,
		ThreadId:     data.ThreadId,
		Content:      data.Content,
		AuthorPubkey: event.PubKey,
		CreatedAt:    event.CreatedAt.Time(),
		Images:       nonNil(data.Images),
		Media:        nonNil(data.Media),
		References:   nonNil(data.References),
	}
	s.cache.AddPost(post)
	logger.Log.Info("post created", "component", "service", "thread_id", post.ThreadId, "post_id", post.Id)
	return post, nil
}

// mergeContentReferences adds >>id references from the content that name a
// cached post of the same thread.
func (s *Service) mergeContentReferences(data domain.PostCreationData) []domain.PostId {
	refs := slices.Clone(data.References)
	for _, id := range markdown.ExtractReferences(data.Content) {
		if slices.Contains(refs, id) {
			continue
		}
		if p, ok := s.cache.GetPost(id); ok && p.ThreadId == data.ThreadId {
			refs = append(refs, id)
		}
	}
	return refs
}
