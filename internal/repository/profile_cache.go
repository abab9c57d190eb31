package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/domain"
)

const profileKeyPrefix = "lifescope:user:profile:"

type cachedProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileCache serves user profiles from Redis, falling back to the repository.
// Profiles never include the password hash. Redis failures degrade to a
// direct repository read.
type ProfileCache struct {
	users  UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfileCache wraps users with a read-through cache. A nil client disables caching.
func NewProfileCache(users UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileCache{users: users, client: client, ttl: ttl, logger: logger}
}

// FindProfile returns the public profile of user id.
func (p *ProfileCache) FindProfile(ctx context.Context, id int64) (*domain.User, error) {
	if p.client != nil {
		raw, err := p.client.Get(ctx, profileKey(id)).Bytes()
		switch {
		case err == nil:
			var cached cachedProfile
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached.user(), nil
			}
			p.logger.Warn("discarding corrupt cached profile", zap.Int64("user_id", id))
		case !errors.Is(err, redis.Nil):
			p.logger.Warn("profile cache read failed", zap.Int64("user_id", id), zap.Error(err))
		}
	}

	user, err := p.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := toCachedProfile(user)

	if p.client != nil {
		if raw, err := json.Marshal(profile); err == nil {
			if err := p.client.Set(ctx, profileKey(id), raw, p.ttl).Err(); err != nil {
				p.logger.Warn("profile cache write failed", zap.Int64("user_id", id), zap.Error(err))
			}
		}
	}
	return profile.user(), nil
}

func profileKey(id int64) string {
	return fmt.Sprintf("%s%d", profileKeyPrefix, id)
}

func toCachedProfile(u *domain.User) cachedProfile {
	return cachedProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (c cachedProfile) user() *domain.User {
	return &domain.User{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
		CreatedAt: c.CreatedAt,
	}
}
