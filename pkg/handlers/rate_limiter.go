package handlers

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"wiki_server/pkg/logger"
)

// clientLimiters :
// Keeps one token bucket per client address. Entries are
// created lazily on the first request of a client and are
// never evicted: the expected population is the handful of
// clients of an embedded wiki, not the open internet.
type clientLimiters struct {
	limit    rate.Limit
	burst    int
	lock     sync.Mutex
	limiters map[string]*rate.Limiter
}

// get :
// Fetches (or creates) the limiter associated to the input
// client address.
func (c *clientLimiters) get(addr string) *rate.Limiter {
	c.lock.Lock()
	defer c.lock.Unlock()

	limiter, ok := c.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[addr] = limiter
	}

	return limiter
}

// WithRateLimit :
// Wrap the input `HTTP` handler with a per-client rate limiter
// allowing the specified number of requests per second. Clients
// are identified by the host part of their remote address. A
// request exceeding the allowance is answered with a 429 status
// without reaching the wrapped handler.
//
// The `log` is used to notify of throttled clients.
//
// The `perSecond` defines the sustained allowance for a single
// client. The burst is set to the same value so that a quiet
// client can catch up instantly.
//
// The `next` represents the handler to protect.
//
// Returns the wrapping handler.
func WithRateLimit(log logger.Logger, perSecond int, next http.HandlerFunc) http.HandlerFunc {
	limiters := &clientLimiters{
		limit:    rate.Limit(perSecond),
		burst:    perSecond,
		limiters: make(map[string]*rate.Limiter),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		addr, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			addr = r.RemoteAddr
		}

		if !limiters.get(addr).Allow() {
			log.Trace(logger.Warning, module, fmt.Sprintf("Throttling client \"%s\"", addr))

			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	}
}
