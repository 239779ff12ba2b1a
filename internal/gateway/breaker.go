package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// newBreaker builds the circuit breaker guarding backend calls. Only
// transport failures and 5xx responses count against the breaker; a 4xx is
// the caller's problem, not an outage.
func newBreaker(name string) *gobreaker.CircuitBreaker[*envelope] {
	return gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
		},
	})
}
