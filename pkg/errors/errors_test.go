package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Clone(ErrNotFound, "teacher not found")
	wrapped := fmt.Errorf("load: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrValidation))
}

func TestWithFieldFormatsMessage(t *testing.T) {
	err := WithField(Clone(ErrUniqueConstraint, "id number already registered"), "id_number")
	assert.Equal(t, "id number already registered (id_number)", err.Error())
	assert.Equal(t, "", ErrUniqueConstraint.Field)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	err := FromError(cause)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, FromError(nil))
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := Rewrap(ErrForeignKey, errors.New("FOREIGN KEY constraint failed"), "")
	outer := Wrap(inner, ErrTransaction.Code, "record award")

	assert.True(t, HasCode(outer, ErrForeignKey.Code))
	assert.True(t, HasCode(outer, ErrTransaction.Code))
	assert.False(t, HasCode(outer, ErrNotFound.Code))
}
