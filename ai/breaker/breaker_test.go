package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/ai/mock"
)

func TestEmbedder_PassesThrough(t *testing.T) {
	inner := mock.NewMockEmbedderWithDimension(2).WithVector("a", []float32{1, 0})
	e := New(inner, DefaultConfig())

	v, err := e.EmbedText(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)

	vs, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, "closed", e.State())
}

func TestEmbedder_OpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("connection refused")
	inner := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, boom
	})
	e := New(inner, Config{Name: "test", FailureThreshold: 3, Timeout: time.Minute})

	ctx := context.Background()
	for range 3 {
		_, err := e.EmbedText(ctx, "q")
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", e.State())

	_, err := e.EmbedText(ctx, "q")
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, inner.CallCount(), "open breaker must not reach the backend")
}

func TestEmbedder_HalfOpenRecovery(t *testing.T) {
	failing := true
	inner := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		if failing {
			return nil, errors.New("unavailable")
		}
		return []float32{1}, nil
	})
	var states []string
	e := New(inner, Config{
		Name:             "test",
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		MaxRequests:      1,
		OnStateChange:    func(state string) { states = append(states, state) },
	})

	_, err := e.EmbedText(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, "open", e.State())

	failing = false
	time.Sleep(40 * time.Millisecond)

	v, err := e.EmbedText(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, v)
	assert.Equal(t, "closed", e.State())
	assert.Equal(t, []string{"open", "half-open", "closed"}, states)
}

func TestEmbedder_CancellationDoesNotTrip(t *testing.T) {
	e := New(mock.NewMockEmbedder(), Config{Name: "test", FailureThreshold: 1, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 3 {
		_, err := e.EmbedText(ctx, "q")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", e.State())
}
