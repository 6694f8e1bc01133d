package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func openStub(t *testing.T) (*Store, *stubConn) {
	t.Helper()
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		assert.Equal(t, defaultDriver, driverName)
		return db, nil
	})
	t.Cleanup(restore)

	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	return s, conn
}

func TestOpen_CreatesSlotsTable(t *testing.T) {
	_, conn := openStub(t)
	require.NotEmpty(t, conn.execs)
	assert.Contains(t, conn.execs[0], "CREATE TABLE IF NOT EXISTS slots")
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s, conn := openStub(t)

	_, err := s.Load(ctx, "farms")
	require.ErrorIs(t, err, types.ErrSlotNotFound)

	require.NoError(t, s.Save(ctx, "farms", []byte(`[{"Id":1}]`)))
	got, err := s.Load(ctx, "farms")
	require.NoError(t, err)
	assert.Equal(t, `[{"Id":1}]`, string(got))

	last := conn.execs[len(conn.execs)-1]
	assert.True(t, strings.Contains(last, "ON CONFLICT (name) DO UPDATE"), "save must upsert: %s", last)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s, conn := openStub(t)

	conn.failExec = true
	assert.Error(t, s.Save(ctx, "farms", []byte(`[]`)))

	conn.failQuery = true
	_, err := s.Load(ctx, "farms")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrSlotNotFound)
}

func TestOpen_OpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open fail")
}

func TestOpen_DDLError(t *testing.T) {
	db, conn := newStubDB()
	conn.failExec = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure slots table")
}

// TestIntegration_Postgres runs against a live server when
// FARMKEEPER_TEST_POSTGRES_DSN is set.
func TestIntegration_Postgres(t *testing.T) {
	dsn := os.Getenv("FARMKEEPER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FARMKEEPER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	slot := fmt.Sprintf("it_%d", os.Getpid())
	t.Cleanup(func() { _, _ = s.DB().Exec(`DELETE FROM slots WHERE name = $1`, slot) })

	_, err = s.Load(ctx, slot)
	require.ErrorIs(t, err, types.ErrSlotNotFound)

	require.NoError(t, s.Save(ctx, slot, []byte(`[{"Id":1,"name":"North Field"}]`)))
	require.NoError(t, s.Save(ctx, slot, []byte(`[{"Id":2,"name":"South Field"}]`)))
	got, err := s.Load(ctx, slot)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Id":2,"name":"South Field"}]`, string(got))
}
