package pending

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// RedisStore shares pending credentials between instances, so that the callback from
// Twitter may be handled by a different instance than the one that started the login
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "twitter-auth:pending:",
	}
}

func (r *RedisStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisStore) Put(ctx context.Context, cred twitterauth.TemporaryCredential) error {
	if cred.Token == "" || cred.Secret == "" {
		return ErrInvalidCredential
	}
	if err := r.client.Set(ctx, r.key(cred.Token), cred.Secret, DefaultTTL).Err(); err != nil {
		return fmt.Errorf("pending: failed to store credential: %w", err)
	}
	return nil
}

func (r *RedisStore) Take(ctx context.Context, token string) (twitterauth.TemporaryCredential, bool, error) {
	if token == "" {
		return twitterauth.TemporaryCredential{}, false, nil
	}
	secret, err := r.client.GetDel(ctx, r.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return twitterauth.TemporaryCredential{}, false, nil
	}
	if err != nil {
		return twitterauth.TemporaryCredential{}, false, fmt.Errorf("pending: failed to take credential: %w", err)
	}
	return twitterauth.TemporaryCredential{Token: token, Secret: secret}, true, nil
}
