package payment

import "github.com/google/uuid"

// KeyGenerator mints idempotence keys for mutating provider calls.
// Injected into the gateway so tests can observe that every call gets a fresh key.
type KeyGenerator interface {
	Next() string
}

// UUIDKeyGenerator mints a fresh UUIDv4 per call. Keys are never reused and
// never persisted.
type UUIDKeyGenerator struct{}

func (UUIDKeyGenerator) Next() string { return uuid.NewString() }
