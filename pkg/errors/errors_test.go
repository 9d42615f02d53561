package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "semester 3 not found")
	assert.Equal(t, "semester 3 not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := fmt.Errorf("save: %w", Wrap(cause, ErrStorage.Code, "failed to save transcript"))

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "save: failed to save transcript: disk full", err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrInternal.Code, FromError(fmt.Errorf("boom")).Code)

	typed := Clone(ErrNoData, "")
	assert.Same(t, typed, FromError(fmt.Errorf("wrapped: %w", typed)))
}
