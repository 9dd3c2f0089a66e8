package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/pkg/database"
	apperrors "github.com/way-19/consulting19/pkg/errors"
)

const (
	wizardKeyPrefix = "wizard:"
	lockKeyPrefix   = "wizard:lock:"
)

var errVersionMismatch = errors.New("version mismatch")

// WizardRepository implements repository.WizardRepository using Redis.
type WizardRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWizardRepository creates a Redis-backed draft store. Drafts expire ttl
// after their last save.
func NewWizardRepository(client *redis.Client, ttl time.Duration) *WizardRepository {
	return &WizardRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a draft by id.
func (r *WizardRepository) Get(ctx context.Context, id string) (*domain.Wizard, error) {
	data, err := r.client.Get(ctx, wizardKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wizard", id)
		}
		return nil, fmt.Errorf("redis get wizard: %w", err)
	}

	var w domain.Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal wizard: %w", err)
	}

	return &w, nil
}

// Save persists a draft with the configured TTL.
func (r *WizardRepository) Save(ctx context.Context, w *domain.Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wizard: %w", err)
	}

	if err := r.client.Set(ctx, wizardKeyPrefix+w.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wizard: %w", err)
	}

	return nil
}

// SaveIfVersion performs an optimistic write using WATCH/MULTI.
func (r *WizardRepository) SaveIfVersion(ctx context.Context, w *domain.Wizard, expectedVersion int) (ok bool, err error) {
	key := wizardKeyPrefix + w.ID

	ctx, end := database.TraceQuery(ctx, "redis", "SaveWizardIfVersion", "WATCH "+key)
	defer func() { end(err) }()

	w.Version = expectedVersion + 1
	data, err := json.Marshal(w)
	if err != nil {
		w.Version = expectedVersion
		return false, fmt.Errorf("marshal wizard: %w", err)
	}

	txErr := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current := 0
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var head struct {
				Version int `json:"version"`
			}
			if err := json.Unmarshal(stored, &head); err != nil {
				return fmt.Errorf("unmarshal stored wizard: %w", err)
			}
			current = head.Version
		case err != redis.Nil:
			return fmt.Errorf("redis get wizard: %w", err)
		}

		if current != expectedVersion {
			return errVersionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case txErr == nil:
		return true, nil
	case errors.Is(txErr, errVersionMismatch), errors.Is(txErr, redis.TxFailedErr):
		w.Version = expectedVersion
		return false, nil
	default:
		w.Version = expectedVersion
		return false, fmt.Errorf("save wizard: %w", txErr)
	}
}

// Delete removes a draft.
func (r *WizardRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, wizardKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del wizard: %w", err)
	}
	return nil
}

// releaseLockScript deletes the lock only when it still carries the
// caller's token, so an expired holder cannot free a newer one.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// SubmitLock implements repository.SubmitLock with SET NX and a
// per-attempt token.
type SubmitLock struct {
	client *redis.Client
}

// NewSubmitLock creates a Redis-backed submission lock.
func NewSubmitLock(client *redis.Client) *SubmitLock {
	return &SubmitLock{client: client}
}

// Acquire takes the lock, reporting false when it is already held.
func (l *SubmitLock) Acquire(ctx context.Context, id string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+id, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx submit lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it. A lock that expired and
// was taken by another attempt is left alone.
func (l *SubmitLock) Release(ctx context.Context, id, token string) error {
	if err := releaseLockScript.Run(ctx, l.client, []string{lockKeyPrefix + id}, token).Err(); err != nil {
		return fmt.Errorf("redis release submit lock: %w", err)
	}
	return nil
}

// Held reports whether the lock is taken.
func (l *SubmitLock) Held(ctx context.Context, id string) (bool, error) {
	n, err := l.client.Exists(ctx, lockKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists submit lock: %w", err)
	}
	return n > 0, nil
}
