package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/prodigy/core"
	"github.com/trezcool/prodigy/core/session"
)

const (
	keyPrefix  = "prodigy:session:"
	tokenField = "token"
	userField  = "user"
)

// Provider hands out redis backed Stores, one hash per browser session.
type Provider struct {
	client *redis.Client
	ttl    time.Duration
}

var _ session.Provider = (*Provider)(nil)

func NewProvider(client *redis.Client, ttl time.Duration) *Provider {
	return &Provider{client: client, ttl: ttl}
}

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func (p *Provider) For(sid string) session.Store {
	return &store{client: p.client, key: keyPrefix + sid, ttl: p.ttl}
}

type store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *store) Save(ctx context.Context, credential string, profile session.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "encoding profile")
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, tokenField, credential, userField, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "saving session")
}

func (s *store) Load(ctx context.Context) (string, *session.Profile, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil, nil
		}
		return "", nil, errors.Wrap(err, "loading session")
	}
	credential := vals[tokenField]
	if credential == "" {
		return "", nil, nil
	}
	var profile *session.Profile
	if raw := vals[userField]; raw != "" {
		profile = new(session.Profile)
		if err := json.Unmarshal([]byte(raw), profile); err != nil {
			return "", nil, errors.Wrap(err, "decoding profile")
		}
	}
	return credential, profile, nil
}

func (s *store) Clear(ctx context.Context) error {
	return errors.Wrap(s.client.Del(ctx, s.key).Err(), "clearing session")
}
