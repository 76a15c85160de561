// Package storage is the key-value persistence port that stands in for the
// browser's durable storage. Values are JSON documents without a version
// marker: changing a stored format means renaming its key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is implemented by every driver. Get returns ErrNotFound for an absent
// key; Clear of an absent key succeeds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

type namespaced struct {
	inner  Store
	prefix string
}

// Namespaced scopes every key of inner under ns. Each browser gets its own
// namespace so keys like "token" never collide across clients.
func Namespaced(inner Store, ns string) Store {
	return &namespaced{inner: inner, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Clear(ctx context.Context, key string) error {
	return n.inner.Clear(ctx, n.prefix+key)
}

func GetJSON(ctx context.Context, s Store, key string, out any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	return nil
}
