package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// DefaultAchievementKey holds the ids of already announced achievements.
const DefaultAchievementKey = "ipk_achievements"

// AchievementRepository stores announced achievement ids as a JSON array.
type AchievementRepository struct {
	store KeyValueStore
	key   string
}

// NewAchievementRepository constructs a repository over a key-value store.
func NewAchievementRepository(store KeyValueStore, key string) *AchievementRepository {
	if key == "" {
		key = DefaultAchievementKey
	}
	return &AchievementRepository{store: store, key: key}
}

// Load returns the stored ids, or an empty list when none were stored.
func (r *AchievementRepository) Load(ctx context.Context) ([]string, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, appErrors.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, fmt.Sprintf("decode %s", r.key))
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Save replaces the stored ids.
func (r *AchievementRepository) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, fmt.Sprintf("encode %s", r.key))
	}
	return r.store.Put(ctx, r.key, payload)
}
