package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAside_FetchOnMissThenCacheHit(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	fetches := 0
	var dest []string
	err := Aside(ctx, store, "columns:authors", &dest, time.Minute, func() error {
		fetches++
		dest = []string{"id", "gender"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, []string{"id", "gender"}, dest)

	var dest2 []string
	err = Aside(ctx, store, "columns:authors", &dest2, time.Minute, func() error {
		fetches++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches, "second call should be served from the cache")
	assert.Equal(t, []string{"id", "gender"}, dest2)
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("source down")
	var dest []string
	err := Aside(context.Background(), NewMemoryStore(), "k", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAside_NilStoreAlwaysFetches(t *testing.T) {
	t.Parallel()

	fetches := 0
	var dest int
	for i := 0; i < 3; i++ {
		err := Aside(context.Background(), nil, "k", &dest, time.Minute, func() error {
			fetches++
			dest = 7
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fetches)
	assert.Equal(t, 7, dest)
}
