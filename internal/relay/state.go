package relay

import (
	"slices"

	"github.com/0xrinegade/4ochan/shared/domain"
)

// State is an immutable snapshot of the relay set. Reduce never mutates its input.
type State struct {
	Relays    []domain.Relay `json:"relays"`
	Connected int            `json:"connected"`
}

func (s State) Relay(url string) (domain.Relay, bool) {
	for _, r := range s.Relays {
		if r.URL == url {
			return r, true
		}
	}
	return domain.Relay{}, false
}

func (s State) readableURLs() []string {
	var urls []string
	for _, r := range s.Relays {
		if r.Readable() {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func (s State) writableURLs() []string {
	var urls []string
	for _, r := range s.Relays {
		if r.Writable() {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Action is one relay state transition.
type Action interface {
	isAction()
}

type (
	// Load replaces the relay set; every status starts disconnected.
	Load struct{ Relays []domain.Relay }
	Add  struct{ Relay domain.Relay }
	// Remove is only ever triggered by the user.
	Remove     struct{ URL string }
	Connecting struct{ URL string }
	Connected  struct{ URL string }
	Failed     struct {
		URL string
		Err string
	}
	// Replaced swaps a failed legacy url for its fallback, ready for the next connect.
	Replaced struct {
		From string
		To   string
	}
	DisconnectAll struct{}
)

func (Load) isAction()          {}
func (Add) isAction()           {}
func (Remove) isAction()        {}
func (Connecting) isAction()    {}
func (Connected) isAction()     {}
func (Failed) isAction()        {}
func (Replaced) isAction()      {}
func (DisconnectAll) isAction() {}

func withStatus(relays []domain.Relay, url string, status domain.RelayStatus) []domain.Relay {
	for i := range relays {
		if relays[i].URL == url {
			relays[i].Status = status
		}
	}
	return relays
}

func countConnected(relays []domain.Relay) int {
	n := 0
	for _, r := range relays {
		if r.Status == domain.RelayConnected {
			n++
		}
	}
	return n
}

// Reduce returns the state after applying a. Unknown urls leave the state unchanged.
func Reduce(s State, a Action) State {
	relays := slices.Clone(s.Relays)

	switch a := a.(type) {
	case Load:
		relays = make([]domain.Relay, 0, len(a.Relays))
		seen := make(map[string]struct{}, len(a.Relays))
		for _, r := range a.Relays {
			if _, dup := seen[r.URL]; dup || r.URL == "" {
				continue
			}
			seen[r.URL] = struct{}{}
			r.Status = domain.RelayDisconnected
			relays = append(relays, r)
		}
	case Add:
		if _, exists := s.Relay(a.Relay.URL); !exists {
			r := a.Relay
			r.Status = domain.RelayDisconnected
			relays = append(relays, r)
		}
	case Remove:
		relays = slices.DeleteFunc(relays, func(r domain.Relay) bool { return r.URL == a.URL })
	case Connecting:
		relays = withStatus(relays, a.URL, domain.RelayConnecting)
	case Connected:
		relays = withStatus(relays, a.URL, domain.RelayConnected)
	case Failed:
		relays = withStatus(relays, a.URL, domain.RelayError)
	case Replaced:
		if _, exists := s.Relay(a.To); exists {
			relays = slices.DeleteFunc(relays, func(r domain.Relay) bool { return r.URL == a.From })
			break
		}
		for i := range relays {
			if relays[i].URL == a.From {
				relays[i].URL = a.To
				relays[i].Status = domain.RelayDisconnected
			}
		}
	case DisconnectAll:
		for i := range relays {
			relays[i].Status = domain.RelayDisconnected
		}
	}

	return State{Relays: relays, Connected: countConnected(relays)}
}

// replay folds a transition log over an initial state.
func replay(initial State, log []Transition) State {
	s := initial
	for _, t := range log {
		s = Reduce(s, t.Action)
	}
	return s
}

// record flattens a transition for display.
func (t Transition) record() domain.RelayTransition {
	r := domain.RelayTransition{At: t.At, Connected: t.Connected}
	switch a := t.Action.(type) {
	case Load:
		r.Action = "load"
	case Add:
		r.Action, r.URL = "add", a.Relay.URL
	case Remove:
		r.Action, r.URL = "remove", a.URL
	case Connecting:
		r.Action, r.URL = "connecting", a.URL
	case Connected:
		r.Action, r.URL = "connected", a.URL
	case Failed:
		r.Action, r.URL, r.Error = "failed", a.URL, a.Err
	case Replaced:
		r.Action, r.URL, r.Replacement = "replaced", a.From, a.To
	case DisconnectAll:
		r.Action = "disconnect_all"
	}
	return r
}
