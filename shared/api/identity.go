package api

import "github.com/0xrinegade/4ochan/shared/domain"

type IdentityResponse struct {
	PublicKey string          `json:"publicKey"`
	Npub      string          `json:"npub"`
	CanSign   bool            `json:"canSign"`
	Profile   *domain.Profile `json:"profile,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Connected int    `json:"connected"`
}
