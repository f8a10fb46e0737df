package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"ribobook/pkg/logger"
)

type MobileExtractor func(r *http.Request) string

// MobileRateLimiter throttles booking submissions per mobile number with
// a sliding window.
type MobileRateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor MobileExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewMobileRateLimiter(limit int, window time.Duration, extractor MobileExtractor, log *logger.Logger) *MobileRateLimiter {
	limiter := &MobileRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *MobileRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for mobile, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, mobile)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MobileRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *MobileRateLimiter) Allow(mobile string) bool {
	if mobile == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[mobile][:0]
	for _, ts := range rl.requests[mobile] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[mobile] = valid
		return false
	}

	rl.requests[mobile] = append(valid, now)
	return true
}

func MobileRateLimit(limiter *MobileRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mobile := ""
			if limiter.extractor != nil {
				mobile = limiter.extractor(r)
			}

			if mobile != "" && !limiter.Allow(mobile) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"mobile", mobile,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many booking attempts, please wait a minute"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BodyMobileExtractor peeks at the JSON body's "mobile" field on POST
// requests and restores the body for the handler.
func BodyMobileExtractor(r *http.Request) string {
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		Mobile string `json:"mobile"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.Mobile
}
