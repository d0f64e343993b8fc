package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps upload tokens in Redis, one hash per token, with the
// TTL enforced by native key expiry. Suited for multi-node deployments where
// device B's deposit may land on a different instance than device A's poll.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// consumeScript is the atomic used-flag compare-and-set. Field writes keep
// the key's TTL, so a deposited token stays readable for the poller until
// expiry.
var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 'missing'
end
if redis.call('HGET', KEYS[1], 'used') == '1' then
	return 'used'
end
redis.call('HSET', KEYS[1], 'used', '1', 'artifact', ARGV[1])
return 'ok'
`)

// NewRedisTokenStore creates a Redis-backed TokenStore. ttl must be positive:
// Redis is the expiry mechanism here, there is no reaper to fall back on.
func NewRedisTokenStore(client *redis.Client, ttl time.Duration) (*RedisTokenStore, error) {
	if client == nil {
		panic("handoff: redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("handoff: token TTL must be positive, got %s", ttl)
	}
	return &RedisTokenStore{client: client, ttl: ttl}, nil
}

func tokenKey(id string) string {
	return "handoff:token:" + id
}

func (s *RedisTokenStore) CreateToken(ctx context.Context, token *Token) error {
	key := tokenKey(token.ID)
	fields := map[string]any{
		"used":    "0",
		"created": token.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if token.OwnerID != nil {
		fields["owner"] = token.OwnerID.String()
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store upload token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) GetToken(ctx context.Context, id string) (*Token, error) {
	fields, err := s.client.HGetAll(ctx, tokenKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load upload token: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrTokenNotFound
	}

	token := &Token{
		ID:          id,
		Used:        fields["used"] == "1",
		ArtifactRef: fields["artifact"],
	}
	if raw, ok := fields["created"]; ok {
		if created, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			token.CreatedAt = created
		}
	}
	if raw, ok := fields["owner"]; ok {
		if owner, err := uuid.Parse(raw); err == nil {
			token.OwnerID = &owner
		}
	}
	return token, nil
}

func (s *RedisTokenStore) ConsumeToken(ctx context.Context, id, artifactRef string) error {
	res, err := consumeScript.Run(ctx, s.client, []string{tokenKey(id)}, artifactRef).Text()
	if err != nil {
		return fmt.Errorf("failed to consume upload token: %w", err)
	}
	switch res {
	case "ok":
		return nil
	case "used":
		return ErrTokenAlreadyUsed
	default:
		return ErrTokenNotFound
	}
}
