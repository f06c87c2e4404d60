package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateGate is a token bucket per actor. It bounds how often one actor can
// submit scans regardless of plan. The domain argument is ignored.
type RateGate struct {
	every time.Duration
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateGate allows one submission per every, with bursts of burst.
func NewRateGate(every time.Duration, burst int) *RateGate {
	if burst < 1 {
		burst = 1
	}
	return &RateGate{every: every, burst: burst, limiters: map[string]*rate.Limiter{}}
}

func (g *RateGate) limiter(actor string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[actor]
	if !ok {
		l = rate.NewLimiter(rate.Every(g.every), g.burst)
		g.limiters[actor] = l
	}
	return l
}

func (g *RateGate) Check(_ context.Context, actor, _ string) Decision {
	if g.every <= 0 {
		return Allow()
	}
	if g.limiter(actor).Allow() {
		return Allow()
	}
	return Deny(fmt.Sprintf("rate limit exceeded: at most %d submissions per %s", g.burst, g.every))
}
