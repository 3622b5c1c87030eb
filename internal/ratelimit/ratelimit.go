package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter holds one token bucket per key, so requests to one backend
// never wait on another.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewKeyedLimiter allows perSecond requests per key with the given burst.
// A non-positive perSecond disables limiting.
func NewKeyedLimiter(perSecond float64, burst int) *KeyedLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (k *KeyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = l
	}
	return l
}

// Wait blocks until a request for key is allowed.
// Returns an error if the context is cancelled while waiting.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	if err := k.get(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that takes a token from the limiter before
// every request. Paged listings and batched updates each cost one token per
// HTTP call, so clients talking to the same backend should share one limiter
// and key.
type Transport struct {
	base    http.RoundTripper
	limiter *KeyedLimiter
	key     string
}

// NewTransport wraps base with keyed rate limiting. A nil base means
// http.DefaultTransport.
func NewTransport(base http.RoundTripper, limiter *KeyedLimiter, key string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:    base,
		limiter: limiter,
		key:     key,
	}
}

// RoundTrip waits for the limiter, then delegates to the wrapped transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), t.key); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	return t.base.RoundTrip(req)
}
