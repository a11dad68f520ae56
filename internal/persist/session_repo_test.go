package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/config"
)

// openTestDB connects to BRKGO_TEST_DSN and migrates it, or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("BRKGO_TEST_DSN")
	if dsn == "" {
		t.Skip("BRKGO_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Default().Database
	cfg.DSN = dsn
	db, err := NewDB(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, RunMigrations(ctx, db.Pool, zap.NewNop()))
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepo(db)

	sess, err := repo.Start(ctx, 1, 42)
	require.NoError(t, err)

	require.NoError(t, sess.RecordMilestone(ctx, 1, 5010))
	require.NoError(t, sess.RecordMilestone(ctx, 1, 5010), "repeat tier ignored")
	require.NoError(t, sess.RecordLevel(ctx, 1, 6000))
	require.NoError(t, sess.Finish(ctx, 7000, 2, "game_over"))
	assert.Error(t, sess.Finish(ctx, 7000, 2, "game_over"), "already finished")

	best, err := repo.Best(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, best, uint32(7000))

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	var found bool
	for _, r := range recent {
		if r.ID == sess.ID {
			found = true
			require.NotNil(t, r.LastLevel)
			assert.Equal(t, uint32(1), *r.LastLevel)
			assert.Equal(t, uint32(7000), r.Score)
		}
	}
	assert.True(t, found)
}

func TestNewDBBadDSN(t *testing.T) {
	cfg := config.Default().Database
	cfg.DSN = "::not a dsn::"
	_, err := NewDB(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "parse dsn")
}
