package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, policy Policy) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, policy), mr
}

func TestFetchJSONPopulatesAndServesFromCache(t *testing.T) {
	store, _ := newTestStore(t, Policy{TTL: time.Minute})
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]int{"total": 42}, nil
	}

	var first map[string]int
	require.NoError(t, store.FetchJSON(ctx, "listing:1", &first, loader))
	require.Equal(t, 42, first["total"])
	require.Equal(t, 1, loads)

	var second map[string]int
	require.NoError(t, store.FetchJSON(ctx, "listing:1", &second, loader))
	require.Equal(t, 42, second["total"])
	require.Equal(t, 1, loads, "warm read must not hit the loader")
}

func TestFetchJSONReloadsPastTTL(t *testing.T) {
	store, _ := newTestStore(t, Policy{TTL: 10 * time.Millisecond, GCAfter: time.Hour})
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return loads, nil
	}

	var got int
	require.NoError(t, store.FetchJSON(ctx, "counter", &got, loader))
	require.Equal(t, 1, got)

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, store.FetchJSON(ctx, "counter", &got, loader))
	require.Equal(t, 2, got, "stale entry must re-load")
}

func TestFetchJSONLoaderErrorPropagates(t *testing.T) {
	store, _ := newTestStore(t, Policy{})
	boom := errors.New("boom")

	var dest int
	err := store.FetchJSON(context.Background(), "bad", &dest, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestInvalidateDropsKey(t *testing.T) {
	store, _ := newTestStore(t, Policy{TTL: time.Minute})
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return loads, nil
	}

	var got int
	require.NoError(t, store.FetchJSON(ctx, "k", &got, loader))
	require.NoError(t, store.Invalidate(ctx, "k"))
	require.NoError(t, store.FetchJSON(ctx, "k", &got, loader))
	require.Equal(t, 2, loads)
}

func TestNilStoreFallsThroughToLoader(t *testing.T) {
	var store *Store
	var got string
	require.NoError(t, store.FetchJSON(context.Background(), "k", &got, func(context.Context) (interface{}, error) {
		return "direct", nil
	}))
	require.Equal(t, "direct", got)
}
