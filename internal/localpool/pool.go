// Package localpool maintains a client-side pool of pre-drawn one-time
// keys, used to protect messages sent before any pairwise session
// exists.
//
// Keys are drawn in batches from an entropy source and issued at most
// once. Issued keys are retained so the sending device can decrypt its
// own messages later; retention is bounded by a cap that evicts the
// oldest used keys first.
package localpool

import (
	"context"
	"sync"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// Pool defaults.
const (
	DefaultBatchSize = 8
	DefaultKeyBytes  = 4096
	DefaultMaxKeys   = 64
)

// Fetcher supplies key material with a provenance tag. Satisfied by
// entropy.Adapter.
type Fetcher interface {
	FetchTagged(ctx context.Context, n int) ([]byte, domain.KeySource, error)
}

// Config sizes the pool.
type Config struct {
	// BatchSize is how many keys each refill draws.
	BatchSize int

	// KeyBytes is the material length of each key.
	KeyBytes int

	// MaxKeys caps total retained keys, used ones included.
	MaxKeys int
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.KeyBytes <= 0 {
		c.KeyBytes = DefaultKeyBytes
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = DefaultMaxKeys
	}
	return c
}

// Pool is a bounded set of local one-time keys.
type Pool struct {
	cfg     Config
	fetcher Fetcher

	mu    sync.Mutex
	keys  []*domain.LocalKey // insertion order, oldest first
	index map[string]*domain.LocalKey
}

// New creates an empty pool. The first GetKey triggers the first refill.
func New(fetcher Fetcher, cfg Config) *Pool {
	return &Pool{
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		index:   make(map[string]*domain.LocalKey),
	}
}

// GetKey issues length bytes from an unused key and marks that key used.
// When no unused key can serve the request the pool refills once; if the
// refill fails or still cannot serve, it returns ErrKeyPoolExhausted and
// the pool is left unchanged.
func (p *Pool) GetKey(ctx context.Context, length int) ([]byte, string, error) {
	if length <= 0 {
		return nil, "", domain.ErrInvalidArgument.WithDetails("length must be positive")
	}
	if length > p.cfg.KeyBytes {
		return nil, "", domain.ErrKeyPoolExhausted.WithDetails("length exceeds pool key size")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if material, id, ok := p.issueLocked(length); ok {
		return material, id, nil
	}

	if err := p.refillLocked(ctx); err != nil {
		return nil, "", domain.ErrKeyPoolExhausted.WithDetails("refill failed").WithCause(err)
	}
	if material, id, ok := p.issueLocked(length); ok {
		return material, id, nil
	}
	return nil, "", domain.ErrKeyPoolExhausted
}

// GetKeyByID looks up a key for decryption. The three outcomes are
// distinct: material for a known key, (nil, false, nil) for a
// well-formed but unknown ID, and an error for a malformed ID. Lookup
// never consumes the key and works whether or not it has been issued.
func (p *Pool) GetKeyByID(keyID string) ([]byte, bool, error) {
	if !domain.IsValidLocalKeyID(keyID) {
		return nil, false, domain.ErrKeyIDMalformed.WithDetails(keyID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key, ok := p.index[keyID]
	if !ok {
		return nil, false, nil
	}
	return key.Material(), true, nil
}

// Stats reports pool occupancy.
func (p *Pool) Stats() (total, unused int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.keys {
		if !k.Used {
			unused++
		}
	}
	return len(p.keys), unused
}

// issueLocked finds the oldest unused key that can serve length bytes.
func (p *Pool) issueLocked(length int) ([]byte, string, bool) {
	for _, key := range p.keys {
		if key.Used || key.Len() < length {
			continue
		}
		material, err := key.Slice(length)
		if err != nil {
			continue
		}
		key.Used = true
		return material, key.ID, true
	}
	return nil, "", false
}

// refillLocked draws one batch. Material is fetched as a single block so
// its provenance tag covers every key in the batch. On fetch failure no
// key is added.
func (p *Pool) refillLocked(ctx context.Context) error {
	total := p.cfg.BatchSize * p.cfg.KeyBytes
	material, source, err := p.fetcher.FetchTagged(ctx, total)
	if err != nil {
		return err
	}

	for i := 0; i < p.cfg.BatchSize; i++ {
		key, err := domain.NewLocalKey(material[i*p.cfg.KeyBytes:(i+1)*p.cfg.KeyBytes], source)
		if err != nil {
			return err
		}
		p.keys = append(p.keys, key)
		p.index[key.ID] = key
	}

	p.trimLocked()
	return nil
}

// trimLocked evicts the oldest used keys until the pool is within its
// cap. Unused keys are never evicted; a pool sized sanely cannot exceed
// the cap on unused keys alone.
func (p *Pool) trimLocked() {
	excess := len(p.keys) - p.cfg.MaxKeys
	if excess <= 0 {
		return
	}

	kept := make([]*domain.LocalKey, 0, len(p.keys)-excess)
	for _, key := range p.keys {
		if excess > 0 && key.Used {
			delete(p.index, key.ID)
			excess--
			continue
		}
		kept = append(kept, key)
	}
	p.keys = kept
}
