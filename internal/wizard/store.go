package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tourly/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound    = errors.New("wizard session not found")
	ErrConcurrentMutation = errors.New("session changed while the mutation was in flight")
)

// Store owns the persisted session snapshots. Save is compare-and-set on
// the session version, which enforces the single-writer rule: a mutation
// that awaited a network call and lost the race fails instead of clobbering
// a newer snapshot.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Lua script for versioned session save - rejects writes against a stale
// snapshot
const luaSaveSession = `
-- KEYS[1] = session key
-- ARGV[1] = session json
-- ARGV[2] = expected current version (0 for a fresh session)
-- ARGV[3] = ttl seconds

local cur = redis.call("GET", KEYS[1])
if cur then
    local decoded = cjson.decode(cur)
    if tonumber(decoded.version) ~= tonumber(ARGV[2]) then
        return 0
    end
end

redis.call("SET", KEYS[1], ARGV[1], "EX", tonumber(ARGV[3]))
return 1
`

var saveScript = redis.NewScript(luaSaveSession)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(userID uuid.UUID) string {
	return constants.BuildWizardSessionKey(userID.String())
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session load failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("session unmarshal failed: %w", err)
	}
	return &session, nil
}

func (s *redisStore) Save(ctx context.Context, session *Session) error {
	expected := session.Version
	session.Version++
	session.UpdatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		session.Version = expected
		return fmt.Errorf("session marshal failed: %w", err)
	}

	ok, err := saveScript.Run(ctx, s.client,
		[]string{sessionKey(session.UserID)},
		string(data),
		expected,
		int(s.ttl.Seconds()),
	).Int64()
	if err != nil {
		session.Version = expected
		return fmt.Errorf("session save failed: %w", err)
	}
	if ok != 1 {
		session.Version = expected
		return ErrConcurrentMutation
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}
