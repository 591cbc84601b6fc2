// Package ratelimit throttles fixture generation and preview requests.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	GenerateCooldown     time.Duration // Minimum time between generation attempts on one target
	GenerateMaxIPPerHour int           // Max generation attempts per IP per hour
	PreviewMaxIPPerHour  int           // Max previews per IP per hour

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		GenerateCooldown:     10 * time.Second,
		GenerateMaxIPPerHour: 30,
		PreviewMaxIPPerHour:  300,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter keeps per-target and per-IP windows in memory.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex

	generateByTarget map[string]*entry
	generateByIP     map[string]*entry
	previewByIP      map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:           cfg,
		clock:            clock,
		generateByTarget: make(map[string]*entry),
		generateByIP:     make(map[string]*entry),
		previewByIP:      make(map[string]*entry),
		cleanupCtx:       ctx,
		cleanupCancel:    cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckGenerate checks whether a generation on target (a zone or tournament
// key) is allowed. It does not record the attempt.
func (l *Limiter) CheckGenerate(target, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.generateByTarget[target]; e != nil {
		elapsed := now.Sub(e.lastAt)
		if elapsed < l.config.GenerateCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.GenerateCooldown - elapsed,
				Reason:     "cooldown",
			}
		}
	}

	return checkHourly(l.generateByIP[ip], now, l.config.GenerateMaxIPPerHour)
}

// RecordGenerate records a generation attempt that reached storage, whether
// it committed or failed.
func (l *Limiter) RecordGenerate(target, ip string) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record(l.generateByTarget, target, now)
	record(l.generateByIP, ip, now)
}

func (l *Limiter) CheckPreview(ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.RLock()
	defer l.mu.RUnlock()

	return checkHourly(l.previewByIP[ip], now, l.config.PreviewMaxIPPerHour)
}

func (l *Limiter) RecordPreview(ip string) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record(l.previewByIP, ip, now)
}

func checkHourly(e *entry, now time.Time, limit int) LimitResult {
	if e != nil && now.Sub(e.firstAt) < time.Hour && e.count >= limit {
		return LimitResult{
			Allowed:    false,
			RetryAfter: time.Hour - now.Sub(e.firstAt),
			Reason:     "ip_hourly_limit",
		}
	}
	return LimitResult{Allowed: true}
}

func record(m map[string]*entry, key string, now time.Time) {
	e := m[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		m[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	maxTargetAge := max(l.config.GenerateCooldown, time.Hour)
	for k, e := range l.generateByTarget {
		if now.Sub(e.lastAt) > maxTargetAge {
			delete(l.generateByTarget, k)
		}
	}
	for _, m := range []map[string]*entry{l.generateByIP, l.previewByIP} {
		for k, e := range m {
			if now.Sub(e.lastAt) > time.Hour {
				delete(m, k)
			}
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP handles both IPv4 and IPv4-mapped IPv6 addresses.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LogRateLimitExceeded logs a rejected generation or preview request.
func LogRateLimitExceeded(ctx context.Context, limitType, target, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("target", target).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Fixture rate limit exceeded")
}
