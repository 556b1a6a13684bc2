package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/go-commerce/internal/lib/flash"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSession = "sess-1"

func newTestFlash(t *testing.T) *flash.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return flash.NewStore(client, time.Minute)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedClock(ts time.Time) clock {
	return func() time.Time { return ts }
}

func popMessages(t *testing.T, store *flash.Store) []flash.Message {
	t.Helper()
	messages, err := store.Pop(context.Background(), testSession)
	require.NoError(t, err)
	return messages
}
