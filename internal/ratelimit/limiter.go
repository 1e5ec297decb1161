// Package ratelimit implements a fixed-window request limiter keyed by caller
// identity. The counter table is owned by an explicit Limiter constructed at
// process start and handed to the middleware, not hidden package state.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// sweepInterval is how often expired windows are removed from the table.
	sweepInterval = 60 * time.Second

	// fallbackKey is used when no forwarded-address header is present. All
	// such callers share one window; weak, but kept deliberately since the
	// deployment always sits behind a proxy that sets the header.
	fallbackKey = "unknown"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

type Limiter struct {
	mu    sync.Mutex
	table map[string]*entry

	now    func() time.Time
	logger *zap.Logger

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewLimiter(logger *zap.Logger) *Limiter {
	return &Limiter{
		table:  make(map[string]*entry),
		now:    time.Now,
		logger: logger,
		quit:   make(chan struct{}),
	}
}

// Check records one request for key and reports whether it is admitted under
// the fixed-window policy. A fresh window starts when the key is unseen or
// its stored window has expired; a saturated window is not mutated further.
func (l *Limiter) Check(key string, limit int, window time.Duration) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.table[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		l.table[key] = e
		return Result{Allowed: true, Remaining: limit - 1, ResetAt: e.resetAt}
	}

	if e.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}

	e.count++
	return Result{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}
}

// Start launches the background sweep that evicts expired windows, bounding
// the table's memory. Call Stop to terminate it.
func (l *Limiter) Start() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := l.sweep()
				if removed > 0 {
					l.logger.Debug("rate limit sweep", zap.Int("removed", removed))
				}
			case <-l.quit:
				return
			}
		}
	}()
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
	l.wg.Wait()
}

func (l *Limiter) sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.table {
		if now.After(e.resetAt) {
			delete(l.table, key)
			removed++
		}
	}
	return removed
}

// Headers renders the machine-readable rate-limit headers for a check result.
// displayLimit is the nominal limit advertised to clients, which may differ
// from the limit actually enforced for the endpoint.
func Headers(res Result, displayLimit int) map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     strconv.Itoa(displayLimit),
		"X-RateLimit-Remaining": strconv.Itoa(res.Remaining),
		"X-RateLimit-Reset":     res.ResetAt.UTC().Format(time.RFC3339),
	}
}

// ClientKey derives the caller identity from the first hop of the forwarded
// address header, falling back to a shared constant when absent.
func ClientKey(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return fallbackKey
	}
	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return fallbackKey
	}
	return first
}
