package domain

import "time"

// KeySource records where a local key's material came from.
type KeySource string

const (
	// SourceQuantum marks material served by the external quantum source.
	SourceQuantum KeySource = "quantum"

	// SourceFallback marks material from the local CSPRNG fallback.
	SourceFallback KeySource = "fallback"
)

// LocalKey is a pre-drawn one-time key held in a user's local pool, used
// before any pairwise session exists. A key is issued at most once; the
// material is retained after use so the same device can decrypt what it
// sent, but it is never mutated or re-issued.
type LocalKey struct {
	// ID is the key identifier, qmlk-{ulid}.
	ID string

	// material is immutable after creation.
	material []byte

	// CreatedAt is the pool-refill timestamp (Unix ms).
	CreatedAt int64

	// Used marks the key as issued. Set once, never cleared.
	Used bool

	// Source records the material's provenance.
	Source KeySource
}

// NewLocalKey creates an unused key with the given material.
func NewLocalKey(material []byte, source KeySource) (*LocalKey, error) {
	if len(material) == 0 {
		return nil, ErrInvalidArgument.WithDetails("key material must not be empty")
	}
	id, err := GenerateLocalKeyID()
	if err != nil {
		return nil, err
	}
	m := make([]byte, len(material))
	copy(m, material)
	return &LocalKey{
		ID:        id,
		material:  m,
		CreatedAt: time.Now().UnixMilli(),
		Source:    source,
	}, nil
}

// Len returns the key material length.
func (k *LocalKey) Len() int {
	return len(k.material)
}

// Slice returns a copy of the first length bytes of the material.
func (k *LocalKey) Slice(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrInvalidArgument.WithDetails("length must be positive")
	}
	if length > len(k.material) {
		return nil, ErrInvalidArgument.WithDetails("length exceeds key material")
	}
	out := make([]byte, length)
	copy(out, k.material[:length])
	return out, nil
}

// Material returns a copy of the full key material.
func (k *LocalKey) Material() []byte {
	out := make([]byte, len(k.material))
	copy(out, k.material)
	return out
}
