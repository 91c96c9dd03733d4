package http

import (
	"sync"
	"time"
)

const (
	rateLimitPerWindow = 60
	rateLimitWindow    = time.Minute
	staleClientAfter   = 10 * time.Minute
	cleanupEvery       = 5 * time.Minute
)

// rateLimiter caps mutating requests per client IP using a fixed window
// counter. Entries for idle clients are reaped in the background.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	done    chan struct{}
	once    sync.Once
}

type window struct {
	startedAt time.Time
	count     int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.reapLoop()
	return rl
}

// allow records one request from the IP and reports whether it fits in the
// current window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.startedAt) > rateLimitWindow {
		rl.windows[clientIP] = &window{startedAt: now, count: 1}
		return true
	}
	w.count++
	return w.count <= rateLimitPerWindow
}

func (rl *rateLimiter) reapLoop() {
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.reap(time.Now())
		}
	}
}

func (rl *rateLimiter) reap(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, w := range rl.windows {
		if now.Sub(w.startedAt) > staleClientAfter {
			delete(rl.windows, ip)
		}
	}
}

// stop terminates the background reaper. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
