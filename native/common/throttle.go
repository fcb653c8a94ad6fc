package common

import (
	"sync"

	"golang.org/x/time/rate"
)

// SubmitThrottle bounds the rate of Submit batches accepted per address
// with an in-process limiter so a single hot caller cannot starve the admin
// RPC dispatch layer between blocks.
type SubmitThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewSubmitThrottle constructs a throttle allowing rps submissions per
// second per address, with the given burst allowance.
func NewSubmitThrottle(rps float64, burst int) *SubmitThrottle {
	return &SubmitThrottle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether addr may submit now, consuming a token if so.
func (t *SubmitThrottle) Allow(addr string) bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	limiter, ok := t.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(t.rps, t.burst)
		t.limiters[addr] = limiter
	}
	t.mu.Unlock()
	return limiter.Allow()
}
