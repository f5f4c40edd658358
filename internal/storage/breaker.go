package storage

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is returned while the breaker is open
var ErrStoreUnavailable = errors.New("blob store unavailable")

// BreakerConfig configures the circuit breaker around a BlobStore
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the settings used in production
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "blob_store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore trips after consecutive failures and fails fast until the
// store recovers.
type BreakerStore struct {
	next BlobStore
	cb   *gobreaker.CircuitBreaker[*UploadResult]
}

// NewBreakerStore wraps next in a circuit breaker
func NewBreakerStore(next BlobStore, cfg BreakerConfig) *BreakerStore {
	gauge := metrics.Get().CircuitBreakerState.WithLabelValues(cfg.Name)
	gauge.Set(stateValue(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			gauge.Set(stateValue(to))
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*UploadResult](settings),
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Upload runs the wrapped upload through the breaker
func (b *BreakerStore) Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	result, err := b.cb.Execute(func() (*UploadResult, error) {
		return b.next.Upload(ctx, data, folder, filename)
	})
	return result, b.translate(err)
}

// Delete runs the wrapped delete through the breaker
func (b *BreakerStore) Delete(ctx context.Context, keyOrURL string) error {
	_, err := b.cb.Execute(func() (*UploadResult, error) {
		return nil, b.next.Delete(ctx, keyOrURL)
	})
	return b.translate(err)
}

// State returns the breaker state for health reporting
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func (b *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrStoreUnavailable
	}
	return err
}

var _ BlobStore = (*BreakerStore)(nil)
