package mutate

import "github.com/google/uuid"

// IDGenerator produces unique record ids.
// Implemented by UUIDGenerator (production) and testutil.SeqIDGenerator
// (deterministic tests).
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUIDv4 ids.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
