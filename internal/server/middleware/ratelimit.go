package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iudanet/vitrina/internal/server/handlers"
	"github.com/iudanet/vitrina/pkg/api"
)

const (
	clientIdleTTL = 3 * time.Minute
	sweepInterval = time.Minute
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	logger  *slog.Logger
	clients map[string]*clientBucket
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
}

type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with bursts up to burst.
// Stop must be called to end the background sweep.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		logger:  logger,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
		done:    make(chan struct{}),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep(rl.now())
		}
	}
}

// sweep забывает клиентов, молчавших дольше clientIdleTTL
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > clientIdleTTL {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

// Take spends a token of client ip. When none is left it returns false and
// the time until the next token.
func (rl *RateLimiter) Take(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientBucket{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	r := c.bucket.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Middleware answers 429 PGRST429 with Retry-After once a client runs out of tokens
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, wait := rl.Take(ip)
		if !allowed {
			rl.logger.Warn("Rate limit exceeded",
				"ip", ip,
				"method", r.Method,
				"route", routeLabel(r.URL.Path),
				"retry_after", wait)

			w.Header().Set("Retry-After", retryAfter(wait))
			handlers.SendError(w, http.StatusTooManyRequests, api.CodeRateLimited, "rate limit exceeded, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfter округляет ожидание вверх до целых секунд, минимум 1
func retryAfter(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	return strconv.Itoa(max(secs, 1))
}

// clientIP prefers proxy headers over the connection address
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
