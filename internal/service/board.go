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

// LoadBoards queries board definitions and returns every known board by shortName.
// When several definitions share a shortName the first one seen is kept.
func (s *Service) LoadBoards(ctx context.Context) ([]domain.Board, error) {
	if !s.relays.IsOpen() {
		return nil, internal_errors.ErrNotConnected
	}

	events, err := s.relays.Query(ctx, codec.BoardsFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to load boards: %w", err)
	}
	added := 0
	for _, b := range codec.DecodeBoards(events) {
		if _, isNew := s.cache.AddBoard(b); isNew {
			added++
		}
	}
	logger.Log.Debug("boards loaded", "component", "service", "events", len(events), "new", added)
	return s.cache.GetAllBoards(), nil
}

func (s *Service) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	if err := utils.ValidateStruct(data); err != nil {
		return domain.Board{}, err
	}
	if _, exists := s.cache.GetBoardByShortName(data.ShortName); exists {
		return domain.Board{}, internal_errors.ErrBoardExists
	}

	event, err := s.codec.EncodeBoard(data)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.relays.Publish(ctx, event); err != nil {
		return domain.Board{}, err
	}

	board, _ := s.cache.AddBoard(domain.Board{
		Id:          event.ID,
		ShortName:   data.ShortName,
		Name:        data.Name,
		Description: data.Description,
	})
	logger.Log.Info("board created", "component", "service", "board", board.ShortName, "event_id", event.ID)
	return board, nil
}
