package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/utils"
)

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.LoadBoards(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.BoardsResponse{Boards: nonNil(boards)})
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body api.CreateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	board, err := h.svc.CreateBoard(r.Context(), domain.BoardCreationData{
		ShortName:   body.ShortName,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.BoardResponse{Board: board})
}

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	threads, err := h.svc.GetThreadsByBoard(r.Context(), board)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadsResponse{Threads: nonNil(threads)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
