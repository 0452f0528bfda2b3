package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEvaler 只需要 Eval, 方便測試替換
type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// tokenBucketScript 存在 redis hash 的 token bucket
// 原子化補充與扣減, 多實例共享同一配額
const tokenBucketScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
		redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', lastRefill)
		redis.call('EXPIRE', key, 60)
	end

	local elapsedSeconds = (now - lastRefill) / 1000000000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	if currentTokens < 1 then
		redis.call('HMSET', key, 'tokens', currentTokens, 'last_refill', now)
		return 0
	end

	redis.call('HMSET', key, 'tokens', currentTokens - 1, 'last_refill', now)
	return 1
`

// RateLimitMiddleware 依呼叫端身分限流
// key 用購物車歸屬, 沒有歸屬時退回來源IP
// redis 故障時放行, 限流是保護不是授權
func RateLimitMiddleware(client redisEvaler, capacity int, ratePerSecond float64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + callerKey(r)

			result, err := client.Eval(
				r.Context(),
				tokenBucketScript,
				[]string{key},
				capacity,
				ratePerSecond,
				time.Now().UnixNano(),
			).Int64()

			if err == nil && result == 0 {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if owner, ok := GetCartOwner(r.Context()); ok {
		return owner.Key()
	}
	return "ip:" + r.RemoteAddr
}
