package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_LoadEmpty(t *testing.T) {
	s := NewMemoryStorage()

	offset, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, offset)
}

func TestMemoryStorage_SaveLoad(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7))
	require.NoError(t, s.Save(ctx, 12))

	offset, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12, offset)
}

func TestMemoryStorage_NegativeOffset(t *testing.T) {
	s := NewMemoryStorage()

	err := s.Save(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNegativeOffset)
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	s := NewMemoryStorage()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, 1), context.Canceled)

	_, _, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
