package entropy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// stubSource serves a fixed byte or fails.
type stubSource struct {
	name  string
	fill  byte
	err   error
	calls int
}

func (s *stubSource) Fetch(_ context.Context, n int) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = s.fill
	}
	return buf, nil
}

func (s *stubSource) Name() string { return s.name }

// recordingObserver captures adapter events.
type recordingObserver struct {
	served    map[string]int
	fallbacks int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{served: make(map[string]int)}
}

func (o *recordingObserver) FetchServed(source string, n int) { o.served[source] += n }
func (o *recordingObserver) FallbackEngaged()                 { o.fallbacks++ }

func TestAdapterPrefersPrimary(t *testing.T) {
	primary := &stubSource{name: "primary", fill: 0xaa}
	fallback := &stubSource{name: "fallback", fill: 0xbb}
	obs := newRecordingObserver()
	a := NewAdapter(primary, fallback, WithObserver(obs))

	buf, source, err := a.FetchTagged(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceQuantum, source)
	assert.Equal(t, byte(0xaa), buf[0])
	assert.Zero(t, fallback.calls, "fallback touched while primary is healthy")
	assert.Equal(t, 8, obs.served["primary"])
	assert.Zero(t, obs.fallbacks)
}

func TestAdapterFallsBackWholeRequest(t *testing.T) {
	primary := &stubSource{name: "primary", err: domain.ErrEntropyUnavailable}
	fallback := &stubSource{name: "fallback", fill: 0xbb}
	obs := newRecordingObserver()
	a := NewAdapter(primary, fallback, WithObserver(obs))

	buf, source, err := a.FetchTagged(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, source)
	for _, b := range buf {
		assert.Equal(t, byte(0xbb), b, "fallback output must not mix with primary bytes")
	}
	assert.Equal(t, 1, obs.fallbacks)
	assert.Equal(t, 8, obs.served["fallback"])
}

func TestAdapterBothSourcesFail(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("primary down")}
	fallback := &stubSource{name: "fallback", err: errors.New("fallback down")}
	a := NewAdapter(primary, fallback)

	_, _, err := a.FetchTagged(context.Background(), 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEntropyUnavailable))
}

func TestAdapterNilFallback(t *testing.T) {
	primary := &stubSource{name: "primary", err: domain.ErrEntropyUnavailable}
	a := NewAdapter(primary, nil)

	_, err := a.Fetch(context.Background(), 8)
	assert.True(t, errors.Is(err, domain.ErrEntropyUnavailable))
}
