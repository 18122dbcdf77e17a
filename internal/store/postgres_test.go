package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/pf-fairness-engine/internal/games"
)

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := NewPostgresDB(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	rec := sampleRecord("keno", games.Sequence([]int{1, 5, 9, 22, 80}), time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, db.SaveRecord(ctx, rec))

	got, err := db.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Record.Result.Equal(rec.Record.Result))
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)

	list, err := db.ListRecords(ctx, RecordsQuery{Game: "keno", PerPage: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, list.TotalCount, 1)
	assert.Len(t, list.Records, 1)
}
