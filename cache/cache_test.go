package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EasterCompany/dex-vmt-service/config"
)

type fakeRedis struct {
	values map[string]interface{}
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]interface{}{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.values[key] = value
	f.ttls[key] = exp
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func (f *fakeRedis) Close() error { return nil }

func TestNew_NotConfigured(t *testing.T) {
	db, err := New(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, db)

	db, err = New(context.Background(), &config.ConnectionConfig{})
	assert.NoError(t, err)
	assert.Nil(t, db)
}

func TestDB_SetAndDelete(t *testing.T) {
	f := newFakeRedis()
	db := &DB{rdb: f}
	ctx := context.Background()

	key := Key("process", "host-1")
	assert.Equal(t, "dex-vmt-service:process:host-1", key)

	require.NoError(t, db.Set(ctx, key, []byte(`{"state":"ready"}`), time.Minute))
	assert.Equal(t, []byte(`{"state":"ready"}`), f.values[key])
	assert.Equal(t, time.Minute, f.ttls[key])

	require.NoError(t, db.Delete(ctx, key))
	assert.NotContains(t, f.values, key)
	require.NoError(t, db.Ping(ctx))
}

func TestDB_Errors(t *testing.T) {
	f := newFakeRedis()
	f.err = errors.New("connection refused")
	db := &DB{rdb: f}

	err := db.Set(context.Background(), "k", nil, 0)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, db.Ping(context.Background()))
}
