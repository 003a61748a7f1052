// Package identity resolves the key pair the client signs with.
package identity

import (
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/0xrinegade/4ochan/internal/store"
	"github.com/0xrinegade/4ochan/shared/domain"
	internal_errors "github.com/0xrinegade/4ochan/shared/errors"
	"github.com/0xrinegade/4ochan/shared/logger"
)

// Load derives the identity from privateKey (hex or nsec). Without a key a session
// key is generated. Only the public part and the profile are written to s.
func Load(s store.Store, privateKey string) (*domain.Identity, error) {
	sk, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	if sk == "" {
		sk = nostr.GeneratePrivateKey()
		logger.Log.Warn("no private key configured, signing with a session key", "component", "identity")
	}

	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", internal_errors.ErrValidation, err)
	}
	id := &domain.Identity{PublicKey: pk, PrivateKey: sk}

	var stored domain.Identity
	found, err := store.GetJSON(s, store.KeyIdentity, &stored)
	if err != nil {
		logger.Log.Warn("ignoring stored identity", "component", "identity", "error", err)
	}
	if found && stored.PublicKey == pk {
		id.Profile = stored.Profile
	}

	if err := store.SetJSON(s, store.KeyIdentity, id); err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}

	logger.Log.Info("identity loaded", "component", "identity", "npub", Npub(pk))
	return id, nil
}

func parsePrivateKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "nsec") {
		if raw != "" && len(raw) != 64 {
			return "", fmt.Errorf("%w: private key must be 64 hex characters", internal_errors.ErrValidation)
		}
		return strings.ToLower(raw), nil
	}
	prefix, value, err := nip19.Decode(raw)
	if err != nil || prefix != "nsec" {
		return "", fmt.Errorf("%w: malformed nsec key", internal_errors.ErrValidation)
	}
	sk, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: malformed nsec key", internal_errors.ErrValidation)
	}
	return sk, nil
}

// Npub is the bech32 form of a hex public key, or the input when it cannot be encoded.
func Npub(pubkey string) string {
	npub, err := nip19.EncodePublicKey(pubkey)
	if err != nil {
		return pubkey
	}
	return npub
}
