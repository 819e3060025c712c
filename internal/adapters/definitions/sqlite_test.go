package definitions

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobrunner/meridian/internal/domain"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "definitions.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_StoreAndLookup(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	builtin, err := Builtin()
	require.NoError(t, err)
	dhdn, err := builtin.Lookup(ctx, domain.ParseCode("EPSG:31466"))
	require.NoError(t, err)

	custom := testDefinition("TEST:1")
	custom.Identifiers = []string{"LOCAL:one"}
	require.NoError(t, s.Store(ctx, dhdn, custom))

	got, err := s.Lookup(ctx, domain.ParseCode("EPSG:31466"))
	require.NoError(t, err)
	assert.Equal(t, dhdn, got)

	got, err = s.Lookup(ctx, domain.ParseCode("local:one"))
	require.NoError(t, err)
	assert.Equal(t, "TEST:1", got.Code)

	_, err = s.Lookup(ctx, domain.ParseCode("EPSG:4326"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Lookup(ctx, domain.ParseCode("free text"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	codes, err := s.Codes(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseCodes("EPSG:31466", "TEST:1"), codes)
}

func TestSQLite_StoreReplaces(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	first := testDefinition("TEST:1")
	first.Identifiers = []string{"OLD:1"}
	require.NoError(t, s.Store(ctx, first))

	second := testDefinition("TEST:1")
	second.Name = "Renamed"
	require.NoError(t, s.Store(ctx, second))

	got, err := s.Lookup(ctx, domain.ParseCode("TEST:1"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	_, err = s.Lookup(ctx, domain.ParseCode("OLD:1"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "identifiers of the replaced definition are dropped")
}

func TestSQLite_StoreRejectsUnidentified(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	err := s.Store(ctx, testDefinition("TEST:1"), &domain.RawDefinition{Code: "nameless"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Lookup(ctx, domain.ParseCode("TEST:1"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "the transaction is rolled back")
}

func TestSQLite_ClosedDatabase(t *testing.T) {
	s := openTestSQLite(t)
	require.NoError(t, s.Close())

	_, err := s.Lookup(context.Background(), domain.ParseCode("TEST:1"))
	assert.ErrorIs(t, err, domain.ErrBackingStore)
	_, err = s.Codes(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackingStore)
}
