package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/utils"
)

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var body api.SubscribeRequest
	if r.ContentLength > 0 {
		if err := utils.Decode(r.Body, &body); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
	}

	sub, err := h.svc.SubscribeToThread(r.Context(), chi.URLParam(r, "thread"),
		boolOr(body.NotifyOnReplies, true), boolOr(body.NotifyOnMentions, true))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.SubscriptionStatusResponse{
		Subscribed: h.svc.IsSubscribedToThread(chi.URLParam(r, "thread")),
	})
}

func (h *Handler) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.SubscriptionsResponse{Subscriptions: nonNil(h.svc.GetThreadSubscriptions())})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnsubscribeFromThread(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
