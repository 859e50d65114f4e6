package slot

import (
	"context"
	"encoding/json"
	"errors"

	"storefront/internal/domain"
)

// Well-known slot keys.
const (
	KeyCart                   = "cart"
	KeyCheckout               = "checkout"
	KeyLastOrder              = "lastOrder"
	KeyHideShippingDisclaimer = "hideShippingDisclaimer"
)

// Backend is a key-value byte store partitioned by scope (one scope per
// client session). Get returns domain.ErrNotFound for absent keys. Removing
// an absent key is not an error. There is no atomicity across keys.
type Backend interface {
	Get(ctx context.Context, scope, key string) ([]byte, error)
	Set(ctx context.Context, scope, key string, value []byte) error
	Remove(ctx context.Context, scope, key string) error
}

// Store is a Backend bound to a single scope.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type scoped struct {
	backend Backend
	scope   string
}

// Bind returns the Store for one scope of b.
func Bind(b Backend, scope string) Store {
	return scoped{backend: b, scope: scope}
}

func (s scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.backend.Get(ctx, s.scope, key)
}

func (s scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.backend.Set(ctx, s.scope, key, value)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.backend.Remove(ctx, s.scope, key)
}

// GetJSON decodes the slot into v. It reports false when the slot is absent
// or does not hold valid JSON for v; only backend failures are returned as errors.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and overwrites the slot.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}
