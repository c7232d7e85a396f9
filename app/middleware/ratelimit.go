package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Black-And-White-Club/typer-master/config"
	"golang.org/x/time/rate"
)

const (
	// pruneAbove is the client count that triggers a sweep of idle clients.
	pruneAbove = 500
	// idleTTL is how long a client may stay silent before it is forgotten.
	idleTTL = 10 * time.Minute
)

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewIPRateLimiter sizes every client's bucket from cfg.
func NewIPRateLimiter(cfg config.HTTPConfig) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(cfg.RateLimitRPS),
		burst:   cfg.RateLimitBurst,
		now:     time.Now,
	}
}

// Allow takes a token from ip's bucket and reports the wait until the next
// one when the bucket is empty.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) > pruneAbove {
		l.prune(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	res := c.bucket.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// prune drops clients idle for longer than idleTTL. Callers hold mu.
func (l *IPRateLimiter) prune(now time.Time) {
	cutoff := now.Add(-idleTTL)
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Len reports the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects requests over the per-IP limit with 429 and a
// Retry-After in whole seconds. It expects chi's RealIP to have run so
// RemoteAddr reflects the client.
func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if ok, wait := limiter.Allow(ip); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				writeDetail(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	return max(secs, 1)
}
