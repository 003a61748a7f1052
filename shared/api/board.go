package api

import "github.com/0xrinegade/4ochan/shared/domain"

// Request DTOs

type CreateBoardRequest struct {
	ShortName   string `json:"short_name" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Response DTOs

type BoardsResponse struct {
	Boards []domain.Board `json:"boards"`
}

type BoardResponse struct {
	domain.Board
}
