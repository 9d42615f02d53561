package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

type stubRedis struct {
	store  map[string]string
	setErr error
	ttls   []time.Duration
}

func (s *stubRedis) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := s.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (s *stubRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if s.setErr != nil {
		return redis.NewStatusResult("", s.setErr)
	}
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = string(value.([]byte))
	s.ttls = append(s.ttls, expiration)
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client := &stubRedis{}
	store := NewRedisStore(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "ipk_semesters", []byte(`[]`)))
	value, err := store.Get(ctx, "ipk_semesters")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))
	assert.Equal(t, []time.Duration{0}, client.ttls)
}

func TestRedisStoreMissingKey(t *testing.T) {
	store := NewRedisStore(&stubRedis{}, nil)

	_, err := store.Get(context.Background(), "ipk_semesters")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrKeyNotFound)
}

func TestRedisStoreSetFailure(t *testing.T) {
	store := NewRedisStore(&stubRedis{setErr: assert.AnError}, nil)

	err := store.Put(context.Background(), "k", []byte(`1`))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStorage)
}
