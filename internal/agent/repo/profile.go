package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/careerpilot/server/internal/agent/model"
	errx "github.com/careerpilot/server/internal/core/error"
	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a user has no stored record of the
// requested kind. Tools turn it into a friendly in-conversation string.
var ErrNotFound = errors.New("record not found")

// RedisProfileRepository stores per-user career data (resume text,
// profile fields, saved job postings) under user-scoped keys with the
// same TTL-on-touch policy as conversation history.
type RedisProfileRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisProfileRepository(rdb redis.Cmdable, ttl time.Duration) *RedisProfileRepository {
	return &RedisProfileRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisProfileRepository) resumeKey(userID string) string {
	return fmt.Sprintf("user:%s:resume", userID)
}

func (r *RedisProfileRepository) profileKey(userID string) string {
	return fmt.Sprintf("user:%s:profile", userID)
}

func (r *RedisProfileRepository) postingsKey(userID string) string {
	return fmt.Sprintf("user:%s:postings", userID)
}

func (r *RedisProfileRepository) touch(ctx context.Context, key string) {
	if r.ttl <= 0 {
		return
	}
	if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to refresh TTL")
	}
}

func (r *RedisProfileRepository) SaveResumeText(ctx context.Context, userID, text string) error {
	key := r.resumeKey(userID)
	if err := r.rdb.Set(ctx, key, text, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save resume text")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisProfileRepository) GetResumeText(ctx context.Context, userID string) (string, error) {
	key := r.resumeKey(userID)
	s, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load resume text")
		return "", errx.WrapRedis(err)
	}
	r.touch(ctx, key)
	return s, nil
}

func (r *RedisProfileRepository) DeleteResumeText(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, r.resumeKey(userID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisProfileRepository) SaveProfile(ctx context.Context, userID string, p *model.UserProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	key := r.profileKey(userID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save profile")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisProfileRepository) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	key := r.profileKey(userID)
	s, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load profile")
		return nil, errx.WrapRedis(err)
	}
	var p model.UserProfile
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	r.touch(ctx, key)
	return &p, nil
}

func (r *RedisProfileRepository) SaveJobPosting(ctx context.Context, userID string, jp *model.JobPosting) error {
	b, err := json.Marshal(jp)
	if err != nil {
		return fmt.Errorf("marshal job posting: %w", err)
	}
	key := r.postingsKey(userID)
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save job posting")
		return errx.WrapRedis(err)
	}
	r.touch(ctx, key)
	return nil
}

func (r *RedisProfileRepository) ListJobPostings(ctx context.Context, userID string) ([]model.JobPosting, error) {
	key := r.postingsKey(userID)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.JobPosting{}, nil
		}
		return nil, errx.WrapRedis(err)
	}
	out := make([]model.JobPosting, 0, len(rows))
	for i, s := range rows {
		var jp model.JobPosting
		if err := json.Unmarshal([]byte(s), &jp); err != nil {
			return nil, fmt.Errorf("unmarshal job posting at index %d: %w", i, err)
		}
		out = append(out, jp)
	}
	return out, nil
}

var _ model.ProfileRepository = (*RedisProfileRepository)(nil)
