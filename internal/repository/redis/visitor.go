package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/way-19/consulting19/internal/domain"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

const (
	preferenceKeyPrefix = "prefs:"
	comparisonKeyPrefix = "comparison:"
)

// PreferenceRepository stores per-visitor preferences in one hash per
// visitor.
type PreferenceRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreferenceRepository creates a Redis-backed preference store. Each
// write extends the visitor's hash to live ttl longer.
func NewPreferenceRepository(client *redis.Client, ttl time.Duration) *PreferenceRepository {
	return &PreferenceRepository{client: client, ttl: ttl}
}

// Get returns the stored value or "" when absent.
func (r *PreferenceRepository) Get(ctx context.Context, visitorID, key string) (string, error) {
	v, err := r.client.HGet(ctx, preferenceKeyPrefix+visitorID, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis hget preference: %w", err)
	}
	return v, nil
}

// Set stores a value and refreshes the hash TTL.
func (r *PreferenceRepository) Set(ctx context.Context, visitorID, key, value string) error {
	hashKey := preferenceKeyPrefix + visitorID

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hashKey, key, value)
		if r.ttl > 0 {
			pipe.Expire(ctx, hashKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset preference: %w", err)
	}
	return nil
}

// ComparisonRepository stores comparison selections as JSON documents.
type ComparisonRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewComparisonRepository creates a Redis-backed comparison store.
func NewComparisonRepository(client *redis.Client, ttl time.Duration) *ComparisonRepository {
	return &ComparisonRepository{client: client, ttl: ttl}
}

func comparisonKey(visitorID, country string) string {
	return comparisonKeyPrefix + visitorID + ":" + strings.ToLower(country)
}

// Get retrieves a selection; ErrNotFound when the visitor has none for
// country.
func (r *ComparisonRepository) Get(ctx context.Context, visitorID, country string) (*domain.ComparisonSelection, error) {
	data, err := r.client.Get(ctx, comparisonKey(visitorID, country)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("comparison", country)
		}
		return nil, fmt.Errorf("redis get comparison: %w", err)
	}

	var s domain.ComparisonSelection
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal comparison: %w", err)
	}
	if s.PackageIDs == nil {
		s.PackageIDs = []string{}
	}
	return &s, nil
}

// Save persists a selection with the configured TTL.
func (r *ComparisonRepository) Save(ctx context.Context, visitorID string, s *domain.ComparisonSelection) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal comparison: %w", err)
	}
	if err := r.client.Set(ctx, comparisonKey(visitorID, s.Country), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set comparison: %w", err)
	}
	return nil
}
