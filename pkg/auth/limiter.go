package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// Fallback limits when SecConfig leaves them zero, sized for a small
// community of interactive clients.
const (
	defaultRPS   = 20
	defaultBurst = 40
)

// limiterPool hands out one token bucket per client key. Limits are
// resolved once at construction; buckets are created on first sight and
// never evicted.
type limiterPool struct {
	rps   rate.Limit
	burst int

	mu sync.Mutex
	m  map[string]*rate.Limiter
}

func newLimiterPool(sec SecConfig) *limiterPool {
	rps, burst := sec.RPS, sec.Burst
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &limiterPool{
		rps:   rate.Limit(rps),
		burst: burst,
		m:     make(map[string]*rate.Limiter),
	}
}

// Allow charges one request against key's bucket.
func (p *limiterPool) Allow(key string) bool {
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		l = rate.NewLimiter(p.rps, p.burst)
		p.m[key] = l
	}
	p.mu.Unlock()
	return l.Allow()
}
