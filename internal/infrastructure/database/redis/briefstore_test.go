package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

type fakeCommander struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	err    error
}

func newFakeCommander() *fakeCommander {
	return &fakeCommander{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeCommander) Get(ctx context.Context, key string) *goredis.StringCmd {
	cmd := goredis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.values[key]
	if !ok {
		cmd.SetErr(goredis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (f *fakeCommander) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.values[key] = value.([]byte)
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeCommander) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	for _, k := range keys {
		delete(f.values, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func (f *fakeCommander) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func newTestStore(f *fakeCommander) *BriefStore {
	return &BriefStore{
		client: f,
		prefix: "sentinel:brief:",
		logger: logging.NewNopLogger(),
	}
}

func TestBriefStore_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	s := newTestStore(f)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "UA", []byte(`{"summary":"x"}`), 15*time.Minute))

	got, err := s.Get(ctx, "UA")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"summary":"x"}`), got)
	assert.Equal(t, 15*time.Minute, f.ttls["sentinel:brief:UA"])
}

func TestBriefStore_MissReturnsSentinel(t *testing.T) {
	t.Parallel()

	s := newTestStore(newFakeCommander())
	_, err := s.Get(context.Background(), "ZZ")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestBriefStore_BackendFailureWrapsAsCacheError(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	f.err = assert.AnError
	s := newTestStore(f)

	_, err := s.Get(context.Background(), "UA")
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))

	err = s.Set(context.Background(), "UA", []byte("x"), time.Minute)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

func TestBriefStore_Delete(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	s := newTestStore(f)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IQ", []byte("x"), time.Minute))
	require.NoError(t, s.Delete(ctx, "IQ"))

	_, err := s.Get(ctx, "IQ")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
