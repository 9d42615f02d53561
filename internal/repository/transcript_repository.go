package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/ipk-calculator/internal/models"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// DefaultTranscriptKey is the key older browser snapshots were saved under.
const DefaultTranscriptKey = "ipk_semesters"

// TranscriptRepository stores the transcript as a JSON array of semesters.
type TranscriptRepository struct {
	store KeyValueStore
	key   string
}

// NewTranscriptRepository constructs a repository over a key-value store.
func NewTranscriptRepository(store KeyValueStore, key string) *TranscriptRepository {
	if key == "" {
		key = DefaultTranscriptKey
	}
	return &TranscriptRepository{store: store, key: key}
}

// Load decodes the stored snapshot. found is false when nothing was stored.
// Stored ip/totalSKS values are recomputed, never trusted.
func (r *TranscriptRepository) Load(ctx context.Context) (*models.Transcript, bool, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, appErrors.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	t := models.NewTranscript()
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, fmt.Sprintf("decode snapshot %s", r.key))
	}
	return t, true, nil
}

// Save encodes and writes the snapshot.
func (r *TranscriptRepository) Save(ctx context.Context, t *models.Transcript) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, fmt.Sprintf("encode snapshot %s", r.key))
	}
	return r.store.Put(ctx, r.key, payload)
}
