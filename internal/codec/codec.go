package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/0xrinegade/4ochan/shared/domain"
	"github.com/0xrinegade/4ochan/shared/errors"
)

// Signer turns an assembled event into a signed one (id, pubkey, sig).
type Signer func(ev *nostr.Event, privateKey string) error

func schnorrSign(ev *nostr.Event, privateKey string) error {
	return ev.Sign(privateKey)
}

type Codec struct {
	identity *domain.Identity
	sign     Signer
	now      func() time.Time
}

type Option func(*Codec)

func WithSigner(s Signer) Option {
	return func(c *Codec) { c.sign = s }
}

func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func New(identity *domain.Identity, opts ...Option) *Codec {
	c := &Codec{identity: identity, sign: schnorrSign, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// seal assembles the unsigned shape and signs it with the identity key.
func (c *Codec) seal(kind int, tags nostr.Tags, content any) (nostr.Event, error) {
	if !c.identity.CanSign() {
		return nostr.Event{}, errors.ErrMissingPrivateKey
	}

	var body string
	switch v := content.(type) {
	case string:
		body = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nostr.Event{}, fmt.Errorf("failed to encode kind %d content: %w", kind, err)
		}
		body = string(raw)
	}

	if tags == nil {
		tags = nostr.Tags{}
	}
	ev := nostr.Event{
		PubKey:    c.identity.PublicKey,
		CreatedAt: nostr.Timestamp(c.now().Unix()),
		Kind:      kind,
		Tags:      tags,
		Content:   body,
	}
	if err := c.sign(&ev, c.identity.PrivateKey); err != nil {
		return nostr.Event{}, fmt.Errorf("failed to sign kind %d event: %w", kind, err)
	}
	return ev, nil
}
