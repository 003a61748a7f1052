package domain

import "time"

type RelayStatus string

const (
	RelayDisconnected RelayStatus = "disconnected"
	RelayConnecting   RelayStatus = "connecting"
	RelayConnected    RelayStatus = "connected"
	RelayError        RelayStatus = "error"
)

type Relay struct {
	URL    RelayURL    `json:"url"`
	Status RelayStatus `json:"status"`
	Read   bool        `json:"read"`
	Write  bool        `json:"write"`
}

func (r Relay) Readable() bool {
	return r.Status == RelayConnected && r.Read
}

func (r Relay) Writable() bool {
	return r.Status == RelayConnected && r.Write
}

// RelayTransition is one entry of the relay state history.
type RelayTransition struct {
	At          time.Time `json:"at"`
	Action      string    `json:"action"`
	URL         RelayURL  `json:"url,omitempty"`
	Replacement RelayURL  `json:"replacement,omitempty"`
	Error       string    `json:"error,omitempty"`
	Connected   int       `json:"connected"`
}
