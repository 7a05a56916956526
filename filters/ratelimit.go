package filters

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/argos/internal"
)

const defaultMaxClients = 10000

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *internal.Request) string

type rateLimiter struct {
	clients    map[string]*rate.Limiter
	key        KeyFunc
	limit      rate.Limit
	burst      int
	maxClients int
	mu         sync.Mutex
}

// RateLimitOption configures RateLimit.
type RateLimitOption func(*rateLimiter)

// WithRateLimitKey sets how requests are grouped into buckets.
// Defaults to the client IP.
func WithRateLimitKey(fn KeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.key = fn
		}
	}
}

// WithMaxClients bounds the number of tracked buckets. When exceeded, all
// buckets are reset.
func WithMaxClients(n int) RateLimitOption {
	return func(rl *rateLimiter) {
		if n > 0 {
			rl.maxClients = n
		}
	}
}

// RateLimit allows rps requests per second per bucket with the given burst.
// Excess requests are rejected with 429 and a Retry-After header in seconds.
func RateLimit(rps float64, burst int, opts ...RateLimitOption) internal.FilterHandler {
	rl := &rateLimiter{
		clients:    make(map[string]*rate.Limiter),
		key:        ClientIP,
		limit:      rate.Limit(rps),
		burst:      burst,
		maxClients: defaultMaxClients,
	}
	for _, opt := range opts {
		opt(rl)
	}

	return func(r *internal.Request) internal.Decision {
		if wait, ok := rl.allow(rl.key(r), time.Now()); !ok {
			return internal.Reject(
				internal.ErrTooManyRequests(http.StatusText(http.StatusTooManyRequests)).
					WithHeader("Retry-After", strconv.Itoa(retryAfterSeconds(wait))),
			)
		}
		return internal.Continue(r)
	}
}

// allow consumes a token for key. When denied it returns how long until a
// token is available.
func (rl *rateLimiter) allow(key string, now time.Time) (time.Duration, bool) {
	lim := rl.limiter(key)
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return d, false
	}
	return 0, true
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= rl.maxClients {
			rl.clients = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[key] = lim
	}
	return lim
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// ClientIP returns the host part of the connection's remote address.
// Forwarding headers are ignored.
func ClientIP(r *internal.Request) string {
	addr := r.Raw().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSpace(addr)
}
