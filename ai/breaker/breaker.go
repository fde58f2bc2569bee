// Package breaker guards an embedder with a circuit breaker.
//
// When the embedding backend keeps failing the breaker opens and calls fail
// fast with gobreaker.ErrOpenState until the timeout elapses, so a dead
// remote provider costs each request one quick error instead of a slow
// timeout per candidate.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/poiesic/assessor/ai"
)

// ErrOpen is returned while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

// Config controls when the breaker trips and recovers.
type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Logger receives state changes. Default is slog.Default().
	Logger *slog.Logger

	// OnStateChange is called with the new state name after each transition.
	OnStateChange func(state string)
}

// DefaultConfig returns the settings used for remote embedding providers.
func DefaultConfig() Config {
	return Config{
		Name:             "embedder",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// Embedder wraps an ai.Embedder with a circuit breaker.
type Embedder struct {
	next ai.Embedder
	cb   *gobreaker.CircuitBreaker[[][]float32]
}

var _ ai.Embedder = (*Embedder)(nil)

// New wraps next with a breaker configured by cfg.
func New(next ai.Embedder, cfg Config) *Embedder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "breaker", "name", cfg.Name)
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker changed state", "from", from.String(), "to", to.String())
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(to.String())
			}
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}

	return &Embedder{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[][]float32](settings),
	}
}

// EmbedText embeds text unless the breaker is open.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	result, err := e.cb.Execute(func() ([][]float32, error) {
		v, err := e.next.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// EmbedTexts embeds texts unless the breaker is open.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.cb.Execute(func() ([][]float32, error) {
		return e.next.EmbedTexts(ctx, texts)
	})
}

// State reports the breaker state: "closed", "half-open" or "open".
func (e *Embedder) State() string {
	return e.cb.State().String()
}
