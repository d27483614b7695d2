package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeNotFound, "account missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches wrapped cause", func(t *testing.T) {
		cause := errors.New("row not found")
		err := fmt.Errorf("lookup: %w", Wrap(cause, CodeNotFound, "account missing"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Wrap(cause, CodeConflict, "account number already in use")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "conflict")
	assert.Contains(t, err.Error(), "account number already in use")
}

func TestIs(t *testing.T) {
	derr, ok := Is(New(CodeInsufficientFunds, "balance too low"))
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientFunds, derr.Code)

	_, ok = Is(errors.New("boom"))
	assert.False(t, ok)
}
