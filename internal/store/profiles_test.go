package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EarningsRadar/internal/model"
)

func openTestStore(t *testing.T, path string) *ProfileStore {
	t.Helper()
	s, err := OpenProfileStore(path, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestProfileStorePutIsVisibleBeforeFlush(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "profiles.db"))
	defer s.Close()

	s.Put("AAPL", model.ProfileRecord{Sector: "Technology", Industry: "Consumer Electronics", LastUpdated: 42})

	rec, ok := s.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, "Technology", rec.Sector)
	assert.Len(t, s.All(), 1)
}

func TestProfileStoreFlushPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")

	s := openTestStore(t, path)
	s.Put("AAPL", model.ProfileRecord{Sector: "Technology", Industry: "Consumer Electronics", LastUpdated: 42})
	s.Put("XOM", model.ProfileRecord{Sector: "Energy", Industry: "Oil & Gas Integrated", LastUpdated: 43})
	require.NoError(t, s.Flush())

	// Update after the flush; Close flushes the remainder.
	s.Put("AAPL", model.ProfileRecord{Sector: "Technology", Industry: "Hardware", LastUpdated: 44})
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	defer reopened.Close()

	require.Len(t, reopened.All(), 2)
	rec, ok := reopened.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, "Hardware", rec.Industry)
	assert.Equal(t, int64(44), rec.LastUpdated)

	rec, ok = reopened.Get("XOM")
	require.True(t, ok)
	assert.Equal(t, "Energy", rec.Sector)
}

func TestProfileStoreFlushWithNothingStaged(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "profiles.db"))
	defer s.Close()
	assert.NoError(t, s.Flush())
}

func TestProfileStoreAllReturnsCopy(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "profiles.db"))
	defer s.Close()

	s.Put("AAPL", model.ProfileRecord{Sector: "Technology", Industry: "Hardware", LastUpdated: 1})
	all := s.All()
	all["MSFT"] = model.ProfileRecord{}

	_, ok := s.Get("MSFT")
	assert.False(t, ok)
}
