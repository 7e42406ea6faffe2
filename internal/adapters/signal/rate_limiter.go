package signal

import "golang.org/x/time/rate"

// newConnLimiter bounds inbound events per connection. A non-positive
// limit disables limiting.
func newConnLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
