package api

import "github.com/0xrinegade/4ochan/shared/domain"

// Request DTOs

// AddRelayRequest: read and write default to true when omitted.
type AddRelayRequest struct {
	URL   string `json:"url" validate:"required"`
	Read  *bool  `json:"read,omitempty"`
	Write *bool  `json:"write,omitempty"`
}

// Response DTOs

type RelayHistoryResponse struct {
	Transitions []domain.RelayTransition `json:"transitions"`
}

type RelaysResponse struct {
	Relays    []domain.Relay `json:"relays"`
	Connected int            `json:"connected"`
}
