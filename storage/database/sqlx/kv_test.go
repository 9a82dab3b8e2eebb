package sqlxkv

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/storage/database"
)

// openTestDB connects to TEST_DATABASE_URL, skipping the test when it is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	_, err = db.Exec(`DELETE FROM kv_store WHERE key LIKE 'test_%'`)
	require.NoError(t, err)
	return db
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))

	_, err := s.Get(ctx, "test_user")
	assert.Equal(t, core.ErrKeyNotFound, err)

	require.NoError(t, s.Set(ctx, "test_user", []byte(`{"id":"1"}`)))
	require.NoError(t, s.Set(ctx, "test_user", []byte(`{"id":"2"}`)))

	got, err := s.Get(ctx, "test_user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"2"}`, string(got))

	require.NoError(t, s.Delete(ctx, "test_user"))
	require.NoError(t, s.Delete(ctx, "test_user"))
	_, err = s.Get(ctx, "test_user")
	assert.Equal(t, core.ErrKeyNotFound, err)
}

func TestStore_transaction(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, New(tx).Set(ctx, "test_class", []byte(`{}`)))
	require.NoError(t, tx.Rollback())

	_, err = New(db).Get(ctx, "test_class")
	assert.Equal(t, core.ErrKeyNotFound, err)
}
