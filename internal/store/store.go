// Package store is the key-value persistence the client keeps its durable state in:
// identity (public part only), relay list, thread subscriptions and notifications.
package store

import (
	"encoding/json"
	"fmt"
)

// Logical keys, namespaced by Namespaced.
const (
	KeyIdentity      = "identity"
	KeyRelays        = "relays"
	KeySubscriptions = "subscriptions"
	KeyNotifications = "notifications"
	KeyNotifiedPosts = "notified_posts"
)

// Store has getItem/setItem semantics over string keys and values.
type Store interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

type namespaced struct {
	Store
	prefix string
}

// Namespaced prefixes every key with "prefix:".
func Namespaced(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &namespaced{Store: s, prefix: prefix + ":"}
}

func (n *namespaced) GetItem(key string) (string, bool, error) {
	return n.Store.GetItem(n.prefix + key)
}

func (n *namespaced) SetItem(key, value string) error {
	return n.Store.SetItem(n.prefix+key, value)
}

func (n *namespaced) RemoveItem(key string) error {
	return n.Store.RemoveItem(n.prefix + key)
}

// GetJSON decodes the value under key into v. It reports false when the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.GetItem(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("corrupted value under %q: %w", key, err)
	}
	return true, nil
}

func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.SetItem(key, string(raw))
}
