package repository

import (
	"context"
	"fmt"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// KeyValueStore is the persistence port: opaque bytes under string keys, last
// write wins. Get returns appErrors.ErrKeyNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

func keyNotFound(key string) error {
	return appErrors.Clone(appErrors.ErrKeyNotFound, fmt.Sprintf("key %s not found", key))
}

func storageFailure(err error, format string, args ...interface{}) error {
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, fmt.Sprintf(format, args...))
}
