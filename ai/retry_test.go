package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/mock"
	"github.com/poiesic/assessor/similarity"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := ai.RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := ai.RetryWithBackoff(context.Background(), operation, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := ai.RetryWithBackoff(context.Background(), operation, 3, time.Millisecond)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		cancel()
		return errors.New("fails")
	}

	err := ai.RetryWithBackoff(ctx, operation, 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := ai.RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
}

func TestWarmup(t *testing.T) {
	t.Run("reports dimension", func(t *testing.T) {
		dim, err := ai.Warmup(context.Background(), mock.NewMockEmbedderWithDimension(16), 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 16, dim)
	})

	t.Run("retries a provider that is starting", func(t *testing.T) {
		calls := 0
		e := mock.NewMockEmbedder().WithEmbedTextFunc(func(_ context.Context, _ string) ([]float32, error) {
			calls++
			if calls < 2 {
				return nil, errors.New("connection refused")
			}
			return []float32{1, 0}, nil
		})

		dim, err := ai.Warmup(context.Background(), e, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 2, dim)
		assert.Equal(t, 2, calls)
	})

	t.Run("unreachable provider is a model init failure", func(t *testing.T) {
		e := mock.NewMockEmbedder().WithEmbedTextFunc(func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("connection refused")
		})

		_, err := ai.Warmup(context.Background(), e, 2, time.Millisecond)
		assert.ErrorIs(t, err, ai.ErrModelInit)
	})

	t.Run("empty vector is a model init failure", func(t *testing.T) {
		e := mock.NewMockEmbedder().WithEmbedTextFunc(func(_ context.Context, _ string) ([]float32, error) {
			return []float32{}, nil
		})

		_, err := ai.Warmup(context.Background(), e, 1, time.Millisecond)
		assert.ErrorIs(t, err, ai.ErrModelInit)
		assert.ErrorIs(t, err, ai.ErrEmptyEmbedding)
	})
}

func TestNormalized(t *testing.T) {
	ctx := context.Background()
	inner := mock.NewMockEmbedderWithDimension(2).
		WithVector("a", []float32{3, 4}).
		WithVector("zero", []float32{0, 0}).
		WithFailure("bad", errors.New("boom"))
	e := ai.Normalized(inner)

	v, err := e.EmbedText(ctx, "a")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	vs, err := e.EmbedTexts(ctx, []string{"a", "zero"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(similarity.Norm(vs[0])), 1e-6)
	assert.Equal(t, []float32{0, 0}, vs[1])

	_, err = e.EmbedText(ctx, "bad")
	assert.Error(t, err)

	assert.Same(t, e, ai.Normalized(e), "wrapping twice is a no-op")
}
