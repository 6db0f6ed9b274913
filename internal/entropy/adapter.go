package entropy

import (
	"context"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// Observer receives adapter events for metrics and logging.
type Observer interface {
	// FetchServed records n bytes served from the named source.
	FetchServed(source string, n int)

	// FallbackEngaged records a primary failure that was absorbed by
	// the fallback.
	FallbackEngaged()
}

// nopObserver is used when no observer is wired.
type nopObserver struct{}

func (nopObserver) FetchServed(string, int) {}
func (nopObserver) FallbackEngaged()        {}

// Adapter is a Source that prefers a primary source and regenerates the
// WHOLE request from the fallback when the primary fails. Partial
// primary output is discarded rather than topped up, so every returned
// block has a single provenance.
type Adapter struct {
	primary  Source
	fallback Source
	observer Observer
}

// AdapterOption configures the Adapter.
type AdapterOption func(*Adapter)

// WithObserver wires an event observer.
func WithObserver(o Observer) AdapterOption {
	return func(a *Adapter) {
		if o != nil {
			a.observer = o
		}
	}
}

// NewAdapter creates an adapter over primary with fallback. A nil
// fallback makes primary failures terminal.
func NewAdapter(primary, fallback Source, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		primary:  primary,
		fallback: fallback,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch implements Source.
func (a *Adapter) Fetch(ctx context.Context, n int) ([]byte, error) {
	buf, _, err := a.FetchTagged(ctx, n)
	return buf, err
}

// FetchTagged fetches n bytes and reports which source produced them.
func (a *Adapter) FetchTagged(ctx context.Context, n int) ([]byte, domain.KeySource, error) {
	buf, err := a.primary.Fetch(ctx, n)
	if err == nil {
		a.observer.FetchServed(a.primary.Name(), n)
		return buf, domain.SourceQuantum, nil
	}

	if a.fallback == nil {
		return nil, "", err
	}
	a.observer.FallbackEngaged()

	buf, ferr := a.fallback.Fetch(ctx, n)
	if ferr != nil {
		return nil, "", domain.ErrEntropyUnavailable.WithDetails("both sources failed").WithCause(ferr)
	}
	a.observer.FetchServed(a.fallback.Name(), n)
	return buf, domain.SourceFallback, nil
}

// Name implements Source.
func (a *Adapter) Name() string {
	return "adapter(" + a.primary.Name() + ")"
}
