package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const maxUpdateAttempts = 16

var ErrConflict = errors.New("collection modified concurrently")

func decode[T any](raw string, out *T) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func (r *GormRepo) load(ctx context.Context, key string) (*Collection, error) {
	var row Collection
	if err := r.DB.WithContext(ctx).Where("name = ?", key).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) insertIfMissing(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	row := Collection{Name: key, Value: string(data), Version: 1, UpdatedAt: time.Now().UTC()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Read returns the stored value for key. A missing key is initialised with
// initial; an unreadable or mismatched value yields initial and is left as is.
func Read[T any](ctx context.Context, r *GormRepo, key string, initial T) T {
	l := logging.FromContext(ctx).With("repo", "collections.read", "key", key)

	row, err := r.load(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.insertIfMissing(ctx, key, initial); err != nil {
				l.Warn("init_failed", "error", err)
			}
			return initial
		}
		l.Error("read_failed", "error", err)
		return initial
	}

	var out T
	if err := decode(row.Value, &out); err != nil {
		l.Warn("decode_failed", "reason", "stored shape does not match", "error", err)
		return initial
	}
	return out
}

// Write replaces the value for key wholesale. Last write wins.
func (r *GormRepo) Write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	now := time.Now().UTC()
	row := Collection{Name: key, Value: string(data), Version: 1, UpdatedAt: now}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      string(data),
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error
}

func (r *GormRepo) Delete(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).Where("name = ?", key).Delete(&Collection{}).Error
}

// Version reports the current version stamp of key, 0 when absent.
func (r *GormRepo) Version(ctx context.Context, key string) (int64, error) {
	row, err := r.load(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Version, nil
}

func current[T any](ctx context.Context, r *GormRepo, key string, initial T) (T, int64, error) {
	var zero T
	row, err := r.load(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.insertIfMissing(ctx, key, initial); err != nil {
			return zero, 0, err
		}
		row, err = r.load(ctx, key)
	}
	if err != nil {
		return zero, 0, err
	}

	var out T
	if err := decode(row.Value, &out); err != nil {
		logging.FromContext(ctx).Warn("decode_failed", "repo", "collections.update", "key", key, "error", err)
		return initial, row.Version, nil
	}
	return out, row.Version, nil
}

// Update applies fn to the value stored under key and commits the result only
// if nobody wrote the key in between; otherwise fn is re-run on fresh data.
// fn may therefore be called more than once.
func Update[T any](ctx context.Context, r *GormRepo, key string, initial T, fn func(T) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		cur, version, err := current(ctx, r, key, initial)
		if err != nil {
			return zero, err
		}

		next, err := fn(cur)
		if err != nil {
			return zero, err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return zero, fmt.Errorf("encode %s: %w", key, err)
		}

		res := r.DB.WithContext(ctx).Model(&Collection{}).
			Where("name = ? AND version = ?", key, version).
			Updates(map[string]any{
				"value":      string(data),
				"version":    version + 1,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return zero, res.Error
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
	}
	return zero, fmt.Errorf("%s: %w", key, ErrConflict)
}
