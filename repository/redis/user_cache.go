package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/repository"
)

// userCache is a read-through cache for lookups by userid. Redis failures
// are logged and fall through to the backing repository.
type userCache struct {
	next   repository.UserRepository
	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// cachedUser is the stored form. Credentials are never cached; callers of
// GetByUserID only need the profile.
type cachedUser struct {
	UserID    string    `json:"userid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserCache wraps next with a Redis-backed lookup cache.
func NewUserCache(next repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userCache{
		next:   next,
		client: client,
		prefix: "user:",
		ttl:    ttl,
		logger: logger.Named("user_cache"),
	}
}

func (r *userCache) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	result, err := r.client.Get(ctx, r.key(userID)).Result()
	switch {
	case err == nil:
		var cached cachedUser
		if err := json.Unmarshal([]byte(result), &cached); err == nil {
			return cached.user(), nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("userid", userID))
	case !errors.Is(err, redislib.Nil):
		r.logger.Warn("user cache read failed", zap.String("userid", userID), zap.Error(err))
	}

	user, err := r.next.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

func (r *userCache) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *userCache) Create(ctx context.Context, user *domain.User) error {
	return r.next.Create(ctx, user)
}

func (r *userCache) SetUserID(ctx context.Context, email, userID string) error {
	if err := r.next.SetUserID(ctx, email, userID); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		r.logger.Warn("user cache invalidation failed", zap.String("userid", userID), zap.Error(err))
	}
	return nil
}

func (r *userCache) store(ctx context.Context, user *domain.User) {
	if !user.HasUserID() {
		return
	}
	payload, err := json.Marshal(cachedUser{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(user.UserID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("user cache write failed", zap.String("userid", user.UserID), zap.Error(err))
	}
}

func (r *userCache) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}

func (c cachedUser) user() *domain.User {
	return &domain.User{
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
}
