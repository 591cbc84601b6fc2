package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPBuckets hands out one token bucket per client IP for the general API
// limit. Buckets idle for longer than idleTTL are dropped on Sweep.
type IPBuckets struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clock   Clock
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPBuckets(perSecond float64, burst int, clock Clock) *IPBuckets {
	if clock == nil {
		clock = realClock{}
	}
	return &IPBuckets{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for ip.
func (b *IPBuckets) Allow(ip string) bool {
	now := b.clock.Now()

	b.mu.Lock()
	bk, ok := b.buckets[ip]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.buckets[ip] = bk
	}
	bk.lastSeen = now
	b.mu.Unlock()

	return bk.limiter.AllowN(now, 1)
}

// Sweep forgets buckets that have been idle long enough to be full again.
func (b *IPBuckets) Sweep() int {
	now := b.clock.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for ip, bk := range b.buckets {
		if now.Sub(bk.lastSeen) > b.idleTTL {
			delete(b.buckets, ip)
			removed++
		}
	}
	return removed
}
