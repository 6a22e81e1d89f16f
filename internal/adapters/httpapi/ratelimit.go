package httpapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	clockport "github.com/skillsprint/roadmap-api/internal/ports/out/clock"
)

// RateLimiterConfig configures per-subject roadmap generation limits.
type RateLimiterConfig struct {
	PerMinute       int
	CleanupInterval time.Duration
}

type subjectLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per authenticated subject.
type RateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	clk   clockport.Clock
	log   *zap.Logger

	// OnLimited is called for every rejected request (metrics hook).
	OnLimited func()

	mu       sync.Mutex
	limiters map[string]*subjectLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewRateLimiter starts a background sweeper for idle subjects; call Stop to end it.
func NewRateLimiter(cfg RateLimiterConfig, clk clockport.Clock, log *zap.Logger) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	rl := &RateLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.PerMinute,
		ttl:      2 * cfg.CleanupInterval,
		clk:      clk,
		log:      log,
		limiters: make(map[string]*subjectLimiter),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	<-rl.done
}

// Middleware must run after the auth middleware; requests without a Claim pass through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim, ok := ClaimFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.allow(string(claim.Subject)) {
			rl.log.Warn("rate limit exceeded", zap.String("subject", string(claim.Subject)))
			if rl.OnLimited != nil {
				rl.OnLimited()
			}
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			writeError(w, r, http.StatusTooManyRequests,
				"Too many requests",
				"Roadmap generation limit reached. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Len returns the number of tracked subjects.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) allow(subject string) bool {
	now := rl.clk.Now()

	rl.mu.Lock()
	sl, ok := rl.limiters[subject]
	if !ok {
		sl = &subjectLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[subject] = sl
	}
	sl.lastAccess = now
	rl.mu.Unlock()

	return sl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) retryAfterSeconds() int {
	// One token refills every 60/burst seconds.
	if rl.burst <= 0 {
		return 60
	}
	return max(1, (60+rl.burst-1)/rl.burst)
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.clk.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for sub, sl := range rl.limiters {
		if now.Sub(sl.lastAccess) > rl.ttl {
			delete(rl.limiters, sub)
		}
	}
}
