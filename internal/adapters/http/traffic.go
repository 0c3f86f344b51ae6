package httpadapter

import (
	"net/http"

	"golang.org/x/time/rate"
)

// TrafficControl gates the expensive endpoints: a token-bucket rate limit
// in front of a concurrency cap. Health and metrics stay ungated so probes
// keep working while the assistant sheds load.
type TrafficControl struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

func NewTrafficControl(perSecond float64, burst, maxConcurrent int) *TrafficControl {
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = 20
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}
	return &TrafficControl{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		slots:   make(chan struct{}, maxConcurrent),
	}
}

func (tc *TrafficControl) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !gatedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if !tc.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}

		select {
		case tc.slots <- struct{}{}:
			defer func() { <-tc.slots }()
		default:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is at capacity"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func gatedPath(path string) bool {
	switch path {
	case "/healthz", "/metrics":
		return false
	default:
		return true
	}
}
