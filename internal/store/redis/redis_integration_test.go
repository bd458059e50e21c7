package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/backend/internal/store"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("COMANDA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set COMANDA_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("comanda-it-%d:", time.Now().UnixNano())
	s := New(addr, os.Getenv("COMANDA_TEST_REDIS_PASSWORD"), 0, prefix)
	require.NoError(t, s.Ping(ctx))
	t.Cleanup(func() {
		_ = s.client.Del(ctx, prefix+store.KeyOrders, prefix+store.KeyClients).Err()
		_ = s.Close()
	})

	_, err := s.Get(ctx, store.KeyOrders)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, store.KeyOrders, []byte(`[{"id":1}]`)))
	got, err := s.Get(ctx, store.KeyOrders)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	require.NoError(t, s.PutAll(ctx, map[string][]byte{
		store.KeyOrders:  []byte(`[{"id":2}]`),
		store.KeyClients: []byte(`[{"id":3}]`),
	}))
	got, err = s.Get(ctx, store.KeyOrders)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2}]`, string(got))
	got, err = s.Get(ctx, store.KeyClients)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":3}]`, string(got))
}
