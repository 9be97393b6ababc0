package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter per client IP and path. It sits
// behind chi's RealIP middleware, so RemoteAddr already holds the client
// address.
//
// FIXED WINDOW:
// The first request from a key opens a window of length window and counts
// as 1. Further requests inside the window increment the count until it
// reaches limit; after that they get 429 until the window ends, and the
// next request opens a fresh one. It allows short bursts of up to twice
// the limit across a window boundary, which is fine for a login form.
//
// State lives in memory, so each process counts on its own and a restart
// forgets everything.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// bucket is the count for one key and when its window ends.
type bucket struct {
	count int
	reset time.Time
}

// NewRateLimiter allows limit requests per key per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow counts one hit for key and reports whether it is within the limit,
// plus how long until the window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok || !now.Before(b.reset) {
		rl.buckets[key] = &bucket{count: 1, reset: now.Add(rl.window)}
		return true, 0
	}
	if b.count >= rl.limit {
		return false, b.reset.Sub(now)
	}
	b.count++
	return true, 0
}

// sweep drops expired buckets at most once per window.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	for k, b := range rl.buckets {
		if !now.Before(b.reset) {
			delete(rl.buckets, k)
		}
	}
	rl.lastSweep = now
}

// Middleware applies the limit to every request it wraps and answers 429
// with a Retry-After header (whole seconds, at least 1) when exceeded.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.Allow(clientIP(r) + " " + r.URL.Path)
		if !ok {
			secs := int(retry.Round(time.Second).Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests, try again later"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. After RealIP, RemoteAddr may
// be a bare IP with no port, which SplitHostPort rejects; that is returned
// as is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
