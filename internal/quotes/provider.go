// Package quotes defines the live-quote collaborator surface. The engine
// never fetches prices itself; callers use a Provider to annotate open trades
// with current prices after reconstruction.
package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// Provider supplies the current price for a symbol.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (float64, error)
}

// BreakerProvider wraps a Provider with a circuit breaker so a flaky quote
// backend degrades to fast failures instead of stalling report rendering.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider decorates inner with a circuit breaker that trips after
// three consecutive failures and probes again after thirty seconds.
func NewBreakerProvider(inner Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "quotes",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// GetQuote fetches a quote through the breaker.
func (b *BreakerProvider) GetQuote(ctx context.Context, symbol string) (float64, error) {
	v, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.GetQuote(ctx, symbol)
	})
	if err != nil {
		return 0, fmt.Errorf("quote for %s: %w", symbol, err)
	}
	price, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("quote for %s: unexpected result type %T", symbol, v)
	}
	return price, nil
}

var _ Provider = (*BreakerProvider)(nil)
