package database

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/deppfellow/go-commerce/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTracer struct {
	name  string
	calls *[]string
}

func (r recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	*r.calls = append(*r.calls, r.name+":start")
	return ctx
}

func (r recordingTracer) TraceQueryEnd(_ context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	*r.calls = append(*r.calls, r.name+":end")
}

func TestMultiTracer_CallsInOrder(t *testing.T) {
	var calls []string
	mt := &multiTracer{tracers: []pgx.QueryTracer{
		recordingTracer{name: "a", calls: &calls},
		recordingTracer{name: "b", calls: &calls},
	}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, []string{"a:start", "b:start", "a:end", "b:end"}, calls)
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &slowQueryTracer{
		threshold: 100 * time.Millisecond,
		log:       &log,
		now:       func() time.Time { return clock },
	}

	ctx := st.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	clock = clock.Add(50 * time.Millisecond)
	st.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Empty(t, buf.String())

	ctx = st.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT pg_sleep(1)"})
	clock = clock.Add(time.Second)
	st.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1"), Err: errors.New("canceled")})
	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "pg_sleep")
	assert.Contains(t, buf.String(), "canceled")
}

func TestBuildTracer(t *testing.T) {
	log := zerolog.Nop()
	cfg := &config.Config{
		Primary:       config.Primary{Env: "production"},
		Observability: config.DefaultObservabilityConfig(),
	}

	_, isSlow := buildTracer(cfg, &log, nil).(*slowQueryTracer)
	assert.True(t, isSlow)

	cfg.Primary.Env = "local"
	_, isMulti := buildTracer(cfg, &log, nil).(*multiTracer)
	assert.True(t, isMulti)

	cfg.Primary.Env = "production"
	cfg.Observability.Logging.SlowQueryThreshold = 0
	assert.Nil(t, buildTracer(cfg, &log, nil))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "001_setup.sql", entries[0].Name())
	assert.Equal(t, "002_sales.sql", entries[1].Name())
}
