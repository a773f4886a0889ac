package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/online-school/pkg/response"
)

// Policy is a named fixed-window limit. The name is part of the Redis key,
// so routes sharing a client key still count separately.
type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}

var (
	LoginPolicy    = Policy{Name: "login", Max: 10, Window: time.Minute}
	RegisterPolicy = Policy{Name: "register", Max: 10, Window: time.Minute}
	AccountPolicy  = Policy{Name: "account", Max: 120, Window: time.Minute}
	SearchPolicy   = Policy{Name: "search", Max: 60, Window: time.Minute}
	HealthPolicy   = Policy{Name: "health", Max: 120, Window: time.Minute}
)

// KeyFunc identifies the client a request is counted against.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true to skip the limiter for a request.
type AllowFunc func(*gin.Context) bool

// LimitedFunc writes the rejection. The chain is aborted afterwards.
type LimitedFunc func(c *gin.Context, retryAfter time.Duration)

func ipFromCtx(c *gin.Context) string {
	if ip := ClientIP(c); ip != "" {
		return ip
	}
	return "unknown"
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + ipFromCtx(c) }
}

// KeyByUserID counts signed-in users by id and everyone else by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "ip:" + ipFromCtx(c)
	}
}

// LimitedJSON answers with the API error envelope.
func LimitedJSON(c *gin.Context, _ time.Duration) {
	response.Abort(c, response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil))
}

// returns {count, pttl}
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit counts requests per policy and client in Redis and rejects the
// ones over the limit with 429. It fails open when Redis is nil or down.
// OPTIONS requests are never counted.
func RateLimit(rdb *redis.Client, p Policy, keyFn KeyFunc, allow AllowFunc, onLimited LimitedFunc) gin.HandlerFunc {
	if rdb == nil || p.Max <= 0 || p.Window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if onLimited == nil {
		onLimited = LimitedJSON
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		key := fmt.Sprintf("rl:%s:%s", p.Name, keyFn(c))
		count, ttl, err := hit(c, rdb, key, p.Window)
		if err != nil {
			c.Next()
			return
		}

		reset := int((ttl + time.Second - 1) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(p.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(p.Max, count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > p.Max {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			onLimited(c, ttl)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hit(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Duration, error) {
	vals, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(vals))
	}
	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return int(vals[0]), ttl, nil
}

func remaining(max, count int) int {
	if count >= max {
		return 0
	}
	return max - count
}
