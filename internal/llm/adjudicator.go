package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pveilleux/claimsift/internal/model"
)

// Adjudicator is the synchronous port to the generative-model oracle. It
// wraps a Provider with wall-clock latency measurement, an explicit
// per-call timeout and a bounded retry policy: transient transport
// failures are retried, oracle-side refusals (HTTP errors, bad responses)
// are not.
type Adjudicator struct {
	provider Provider
	limiter  *rate.Limiter
	timeout  time.Duration
	retries  int
}

// NewAdjudicator creates an adjudicator over the configured provider
func NewAdjudicator(config Config) (*Adjudicator, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no oracle provider configured")
	}
	return NewAdjudicatorWithProvider(provider, config), nil
}

// NewAdjudicatorWithProvider creates an adjudicator over an explicit
// provider. Tests substitute a fake here.
func NewAdjudicatorWithProvider(provider Provider, config Config) *Adjudicator {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	rps := config.RatePerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Adjudicator{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		timeout:  timeout,
		retries:  config.Retries,
	}
}

// ProviderName returns the underlying provider's name
func (a *Adjudicator) ProviderName() string {
	return a.provider.Name()
}

// IsAvailable checks the underlying provider
func (a *Adjudicator) IsAvailable(ctx context.Context) bool {
	return a.provider.IsAvailable(ctx)
}

// Invoke sends the prompt to the oracle and returns its raw answer plus
// the wall-clock latency of the exchange in milliseconds.
func (a *Adjudicator) Invoke(ctx context.Context, req GenerateRequest) (*GenerateResponse, int64, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: rate limit wait: %v", model.ErrOracleUnavailable, err)
	}

	start := time.Now()
	resp, err := a.invokeWithRetry(ctx, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, latency, err
	}
	return resp, latency, nil
}

func (a *Adjudicator) invokeWithRetry(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= a.retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		resp, err := a.provider.Generate(callCtx, req)
		cancel()

		if err == nil {
			return resp, nil
		}
		lastErr = err

		if isTimeout(err) {
			return nil, fmt.Errorf("%w: after %s: %v", model.ErrOracleTimeout, a.timeout, err)
		}
		if !isTransient(err) {
			// Oracle-side refusal: propagate without retrying
			return nil, fmt.Errorf("%w: %v", model.ErrOracleUnavailable, err)
		}
	}

	return nil, fmt.Errorf("%w: after %d attempts: %v", model.ErrOracleUnavailable, a.retries+1, lastErr)
}

// isTimeout reports whether the call was cut off by the per-call deadline
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTransient reports whether the failure happened in transport rather
// than in the oracle itself. HTTP status errors come back as plain
// formatted errors, not url.Errors, so they fall through to false.
func isTransient(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
