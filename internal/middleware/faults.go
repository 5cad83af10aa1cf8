package middleware

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// Faults makes the mock API behave like a slow, flaky network peer so the
// client's optimistic updates and rollbacks can be exercised by hand.
type Faults struct {
	// Latency delays every request by 80-120% of its value.
	Latency time.Duration
	// FailRate is the probability (0-1) that a request is answered with 500.
	FailRate float64

	logger *slog.Logger
	rand   func() float64
}

func NewFaults(logger *slog.Logger, latency time.Duration, failRate float64) *Faults {
	return &Faults{Latency: latency, FailRate: failRate, logger: logger, rand: rand.Float64}
}

// WithRand replaces the random source. Tests use it to make faults
// deterministic.
func (f *Faults) WithRand(fn func() float64) *Faults {
	f.rand = fn
	return f
}

func (f *Faults) Enabled() bool {
	return f != nil && (f.Latency > 0 || f.FailRate > 0)
}

func (f *Faults) LatencyInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.Latency > 0 {
			jitter := 0.8 + f.rand()*0.4
			timer := time.NewTimer(time.Duration(float64(f.Latency) * jitter))
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Faults) RandomFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.FailRate > 0 && f.rand() < f.FailRate {
			writeError(w, f.logger, http.StatusInternalServerError, "SIMULATED_FAILURE", "simulated random failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}
