package entropy

import (
	"context"
	"crypto/rand"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// Source produces n bytes of random material.
type Source interface {
	// Fetch returns exactly n bytes or an error, never a short read.
	Fetch(ctx context.Context, n int) ([]byte, error)

	// Name identifies the source in logs and metrics.
	Name() string
}

// System reads from the operating system CSPRNG. It is the fallback
// behind the quantum source and is assumed never to fail in practice.
type System struct{}

// NewSystem creates a CSPRNG source.
func NewSystem() *System {
	return &System{}
}

// Fetch returns n bytes from crypto/rand.
func (s *System) Fetch(_ context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("byte count must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, domain.ErrEntropyUnavailable.WithCause(err)
	}
	return buf, nil
}

// Name implements Source.
func (s *System) Name() string {
	return "system-csprng"
}
