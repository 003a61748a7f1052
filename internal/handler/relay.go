package handler

import (
	"net/http"

	"github.com/0xrinegade/4ochan/internal/identity"
	"github.com/0xrinegade/4ochan/shared/api"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/utils"
)

func (h *Handler) relaysResponse() api.RelaysResponse {
	return api.RelaysResponse{Relays: h.svc.Relays(), Connected: h.svc.ConnectedCount()}
}

func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Connect(r.Context()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.relaysResponse())
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.svc.Disconnect()
	utils.WriteJSON(w, http.StatusOK, h.relaysResponse())
}

func (h *Handler) GetRelays(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.relaysResponse())
}

func (h *Handler) GetRelayHistory(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.RelayHistoryResponse{Transitions: nonNil(h.svc.RelayHistory())})
}

func (h *Handler) AddRelay(w http.ResponseWriter, r *http.Request) {
	var body api.AddRelayRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	relay, err := h.svc.AddRelay(r.Context(), body.URL, boolOr(body.Read, true), boolOr(body.Write, true))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, relay)
}

// RemoveRelay takes the url as a query parameter since relay urls contain slashes.
func (h *Handler) RemoveRelay(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "url is required", StatusCode: http.StatusBadRequest})
		return
	}
	if err := h.svc.RemoveRelay(url); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	id := h.svc.Identity()
	if id == nil {
		utils.WriteErrorAndStatusCode(w, internal_errors.ErrMissingPrivateKey)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.IdentityResponse{
		PublicKey: id.PublicKey,
		Npub:      identity.Npub(id.PublicKey),
		CanSign:   id.CanSign(),
		Profile:   id.Profile,
	})
}
