package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	s := NewRedisStore(client)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, _ := newMiniRedisStore(t)
		return s
	})
}

func TestRedisStore_KeyLayout(t *testing.T) {
	s, mr := newMiniRedisStore(t)
	require.NoError(t, s.Create(context.Background(), Orders, "a@b.co", doc{Name: "x", Count: 2}))

	raw, err := mr.Get("orders:a@b.co")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","count":2}`, raw)
}

func TestConnectRedis_Errors(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "", "", 0)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = ConnectRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestRedisStore_ReadBackendError(t *testing.T) {
	s, mr := newMiniRedisStore(t)
	mr.SetError("boom")
	var got doc
	err := s.Read(context.Background(), Tokens, "a@b.co", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, redis.Nil)
}
