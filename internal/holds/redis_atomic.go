package holds

import (
	"context"
	"fmt"
	"time"

	"tourly/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AtomicRedisOperations handles the live lead-hold entries. One active hold
// per user; acquisition is create-if-absent so two tabs cannot double-hold.
type AtomicRedisOperations struct {
	redis *redis.Client
}

func NewAtomicRedisOperations(redisClient *redis.Client) *AtomicRedisOperations {
	return &AtomicRedisOperations{redis: redisClient}
}

// Lua script for atomic hold acquisition - one live hold per user
const luaAcquireLeadHold = `
-- KEYS[1] = user hold key
-- ARGV[1] = hold_id
-- ARGV[2] = tour_id
-- ARGV[3] = departure_date
-- ARGV[4] = seat_count
-- ARGV[5] = ttl_seconds

local key = KEYS[1]

if redis.call("EXISTS", key) == 1 then
    local existing = redis.call("HGET", key, "hold_id")
    return {0, existing}
end

redis.call("HMSET", key,
    "hold_id", ARGV[1],
    "tour_id", ARGV[2],
    "departure_date", ARGV[3],
    "seat_count", ARGV[4],
    "status", "pending"
)
redis.call("EXPIRE", key, tonumber(ARGV[5]))

return {1, ARGV[1]}
`

// Lua script for atomic hold confirmation - only a still-live pending hold
// can be confirmed
const luaConfirmLeadHold = `
-- KEYS[1] = user hold key
-- ARGV[1] = hold_id

local key = KEYS[1]

if redis.call("EXISTS", key) == 0 then
    return {0, "hold_expired"}
end

if redis.call("HGET", key, "hold_id") ~= ARGV[1] then
    return {0, "hold_mismatch"}
end

redis.call("HSET", key, "status", "confirmed")
return {1, "confirmed"}
`

var (
	acquireScript = redis.NewScript(luaAcquireLeadHold)
	confirmScript = redis.NewScript(luaConfirmLeadHold)
)

// PreloadScripts loads the Lua scripts into the Redis script cache.
func (a *AtomicRedisOperations) PreloadScripts(ctx context.Context) error {
	if err := acquireScript.Load(ctx, a.redis).Err(); err != nil {
		return fmt.Errorf("failed to load acquire script: %w", err)
	}
	if err := confirmScript.Load(ctx, a.redis).Err(); err != nil {
		return fmt.Errorf("failed to load confirm script: %w", err)
	}
	return nil
}

func userHoldKey(userID uuid.UUID) string {
	return constants.BuildLeadHoldKey(userID.String())
}

// Acquire creates the live hold entry if the user has none. Returns the
// winning hold id; ok is false when an earlier hold is still live.
func (a *AtomicRedisOperations) Acquire(ctx context.Context, hold *LeadHold, ttl time.Duration) (bool, string, error) {
	result, err := acquireScript.Run(ctx, a.redis,
		[]string{userHoldKey(hold.UserID)},
		hold.ID.String(),
		hold.TourID.String(),
		hold.DepartureDate,
		hold.SeatCount,
		int(ttl.Seconds()),
	).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis acquire failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, "", fmt.Errorf("unexpected redis response")
	}

	won, _ := values[0].(int64)
	holdID, _ := values[1].(string)
	return won == 1, holdID, nil
}

// Confirm flips the live entry to confirmed. Fails when the entry expired
// or belongs to a different hold.
func (a *AtomicRedisOperations) Confirm(ctx context.Context, userID, holdID uuid.UUID) (bool, string, error) {
	result, err := confirmScript.Run(ctx, a.redis,
		[]string{userHoldKey(userID)},
		holdID.String(),
	).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis confirm failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, "", fmt.Errorf("unexpected redis response")
	}

	won, _ := values[0].(int64)
	reason, _ := values[1].(string)
	return won == 1, reason, nil
}

// Release drops the live entry. Safe to call on a missing key.
func (a *AtomicRedisOperations) Release(ctx context.Context, userID uuid.UUID) error {
	if err := a.redis.Del(ctx, userHoldKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis release failed: %w", err)
	}
	return nil
}

// IsLive reports whether the user's hold entry still exists (TTL not hit).
func (a *AtomicRedisOperations) IsLive(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := a.redis.Exists(ctx, userHoldKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}
