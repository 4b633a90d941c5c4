package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	accountKeyPrefix  = "account:"
	usernameKeyPrefix = "account:username:"
	emailKeyPrefix    = "account:email:"

	// maxUnlockRetries bounds the WATCH loop of Unlock.
	maxUnlockRetries = 10
)

// RedisRepository keeps each account as a JSON record under account:<id>,
// with account:username:<name> and account:email:<email> pointing to the id.
type RedisRepository struct {
	rdb redis.UniversalClient
}

func NewRedisRepository(rdb redis.UniversalClient) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) Find(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	indexKey, err := indexKey(field, value)
	if err != nil {
		return nil, err
	}

	id, err := r.rdb.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return r.get(ctx, r.rdb, id)
}

// Save is the seeding entry point for the Redis backend: it writes a together
// with its username and email index keys, overwriting any previous record.
// SQL backends are seeded with plain INSERTs, so Save is not part of
// Repository. Login and unlock go through Update and Unlock only.
func (r *RedisRepository) Save(ctx context.Context, a *models.Account) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accountKey(a.ID), payload, 0)
		pipe.Set(ctx, usernameKeyPrefix+a.Username, a.ID, 0)
		pipe.Set(ctx, emailKeyPrefix+a.Email, a.ID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	key := accountKey(a.ID)
	var updated models.Account

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := r.get(ctx, tx, a.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrVersionConflict
			}
			return err
		}
		if stored.Version != a.Version {
			return common.ErrVersionConflict
		}

		updated = *stored
		copyMutable(&updated, a)
		updated.Version = stored.Version + 1

		payload, err := json.Marshal(&updated)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return &updated, nil
	case errors.Is(err, redis.TxFailedErr):
		return nil, common.ErrVersionConflict
	case errors.Is(err, common.ErrVersionConflict):
		return nil, err
	default:
		return nil, fmt.Errorf("redis error: %w", err)
	}
}

func (r *RedisRepository) Unlock(ctx context.Context, field models.LookupField, value string) (*models.Account, error) {
	for range maxUnlockRetries {
		a, err := r.Find(ctx, field, value)
		if err != nil {
			return nil, err
		}

		a.FailedLoginAttempts = 0
		a.AccountLocked = false
		a.AccountLockedUntil = time.Time{}

		updated, err := r.Update(ctx, a)
		if errors.Is(err, common.ErrVersionConflict) {
			continue
		}
		return updated, err
	}
	return nil, common.ErrVersionConflict
}

func (r *RedisRepository) get(ctx context.Context, c redis.Cmdable, id string) (*models.Account, error) {
	data, err := c.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var a models.Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("redis error: decode %s: %w", accountKey(id), err)
	}
	return &a, nil
}

// copyMutable carries over the fields the login engine is allowed to change.
func copyMutable(dst, src *models.Account) {
	dst.FailedLoginAttempts = src.FailedLoginAttempts
	dst.AccountLocked = src.AccountLocked
	dst.AccountLockedUntil = src.AccountLockedUntil
	dst.CurrentLoginTime = src.CurrentLoginTime
	dst.PreviousLoginTime = src.PreviousLoginTime
	dst.CurrentLoginIP = src.CurrentLoginIP
	dst.PreviousLoginIP = src.PreviousLoginIP
}

func indexKey(field models.LookupField, value string) (string, error) {
	switch field {
	case models.FieldUsername:
		return usernameKeyPrefix + value, nil
	case models.FieldEmail:
		return emailKeyPrefix + value, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func accountKey(id string) string {
	return accountKeyPrefix + id
}
