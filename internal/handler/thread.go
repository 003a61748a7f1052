package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
	"github.com/0xrinegade/4ochan/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.svc.CreateThread(r.Context(), domain.ThreadCreationData{
		BoardId: chi.URLParam(r, "board"),
		Title:   body.Title,
		Content: body.Content,
		Images:  body.Images,
		Media:   body.Media,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.ThreadResponse{Thread: thread})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "thread")

	thread, err := h.svc.GetThread(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if thread == nil {
		utils.WriteErrorAndStatusCode(w, internal_errors.ErrThreadNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: *thread, Subscribed: h.svc.IsSubscribedToThread(id)})
}

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.GetPostsByThread(r.Context(), chi.URLParam(r, "thread"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.PostsResponse{Posts: make([]api.PostResponse, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, h.renderPost(p))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body api.CreatePostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), domain.PostCreationData{
		ThreadId:   chi.URLParam(r, "thread"),
		Content:    body.Content,
		Images:     body.Images,
		Media:      body.Media,
		References: body.References,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, h.renderPost(post))
}

// renderPost never fails the request; unrenderable content is served raw only.
func (h *Handler) renderPost(p domain.Post) api.PostResponse {
	html, err := h.md.Render(p.Content)
	if err != nil {
		logger.Log.Warn("post not rendered", "component", "http", "post_id", p.Id, "error", err)
	}
	return api.PostResponse{Post: p, HTML: html}
}
