package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeRepository keeps the short-lived auth state: verification codes,
// password-reset codes and resend throttles. Everything carries a TTL
// so expiry needs no sweeper.
type CodeRepository interface {
	SetVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
	GetVerificationCode(ctx context.Context, email string) (string, error)
	DeleteVerificationCode(ctx context.Context, email string) error
	SetResetCode(ctx context.Context, email, code string, ttl time.Duration) error
	GetResetCode(ctx context.Context, email string) (string, error)
	DeleteResetCode(ctx context.Context, email string) error
	IncrResend(ctx context.Context, email string, window time.Duration) (int64, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type codeRepository struct {
	client *redis.Client
}

func NewCodeRepository(client *redis.Client) CodeRepository {
	return &codeRepository{client: client}
}

func (r *codeRepository) SetVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.client.Set(ctx, "verify:"+email, code, ttl).Err()
}

func (r *codeRepository) GetVerificationCode(ctx context.Context, email string) (string, error) {
	return r.client.Get(ctx, "verify:"+email).Result()
}

func (r *codeRepository) DeleteVerificationCode(ctx context.Context, email string) error {
	return r.client.Del(ctx, "verify:"+email).Err()
}

func (r *codeRepository) SetResetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.client.Set(ctx, "reset:"+email, code, ttl).Err()
}

func (r *codeRepository) GetResetCode(ctx context.Context, email string) (string, error) {
	return r.client.Get(ctx, "reset:"+email).Result()
}

func (r *codeRepository) DeleteResetCode(ctx context.Context, email string) error {
	return r.client.Del(ctx, "reset:"+email).Err()
}

// IncrResend counts code resends inside a rolling window. The expiry is
// only armed on the first increment.
func (r *codeRepository) IncrResend(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := "resend:" + email
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// CheckRateLimit is the counter behind the HTTP rate-limit middleware.
func (r *codeRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
