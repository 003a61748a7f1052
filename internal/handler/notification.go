package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0xrinegade/4ochan/shared/api"
	"github.com/0xrinegade/4ochan/shared/utils"
)

// GetNotifications: ?include_read=false&limit=N, limit 0 means the configured default.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	includeRead, err := parseBoolParam(r, "include_read", true)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NotificationsResponse{
		Notifications: nonNil(h.svc.GetNotifications(includeRead, limit)),
	})
}

func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.UnreadCountResponse{Count: h.svc.GetUnreadNotificationCount()})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(chi.URLParam(r, "id")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.svc.MarkAllNotificationsRead()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MarkAllReadResponse{Updated: updated})
}

func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearNotifications(); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
