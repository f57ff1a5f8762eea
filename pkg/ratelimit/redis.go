package ratelimit

import (
	"context"
	"fmt"
	"freshkeep-backend/domain"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultRedisNamespace = "freshkeep:quota"
	redisQuotaTTL         = 48 * time.Hour
)

// consumeScript returns -1 when the quota is exhausted, otherwise the
// remaining allowance after consuming one unit.
var consumeScript = redis.NewScript(`
local used = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local limit = tonumber(ARGV[2])
if used >= limit then
	return -1
end
used = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return limit - used
`)

// RedisQuota shares daily quotas between API replicas. Each device gets one
// hash per calendar day, so a new day always starts from an empty record and
// old days expire on their own.
type RedisQuota struct {
	client    redis.UniversalClient
	limits    Limits
	location  *time.Location
	namespace string
}

func NewRedisQuota(client redis.UniversalClient, limits Limits, loc *time.Location) *RedisQuota {
	if loc == nil {
		loc = time.UTC
	}
	return &RedisQuota{
		client:    client,
		limits:    limits,
		location:  loc,
		namespace: defaultRedisNamespace,
	}
}

func (q *RedisQuota) Limit(action domain.Action) int {
	limit, _ := q.limits.For(action)
	return limit
}

func (q *RedisQuota) CheckAndConsume(ctx context.Context, deviceID string, action domain.Action, now time.Time) (Result, error) {
	limit, err := q.limits.For(action)
	if err != nil {
		return Result{}, err
	}

	key := q.key(deviceID, now)
	resetAt := nextMidnight(now, q.location)

	remaining, err := consumeScript.Run(ctx, q.client, []string{key},
		string(action), limit, int(redisQuotaTTL.Seconds())).Int()
	if err != nil {
		return Result{}, fmt.Errorf("failed to consume %s quota: %w", action, err)
	}

	if remaining < 0 {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: resetAt}, nil
}

func (q *RedisQuota) key(deviceID string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%s", q.namespace, deviceID, dayKey(now, q.location))
}
