package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	db, err := NewSQLiteStore(filepath.Join(dir, "db", "report.db"))
	require.NoError(t, err)

	all := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": db,
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "transportData")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "transportData", []byte(`[{"a":1}]`)))
			got, err := s.Get(ctx, "transportData")
			require.NoError(t, err)
			assert.Equal(t, `[{"a":1}]`, string(got))

			require.NoError(t, s.Set(ctx, "transportData", []byte(`[]x`)))
			got, err = s.Get(ctx, "transportData")
			require.NoError(t, err)
			assert.Equal(t, `[]x`, string(got))

			require.NoError(t, s.Set(ctx, "transportFileName", []byte("enero.xlsx")))

			require.NoError(t, s.Remove(ctx, "transportData"))
			_, err = s.Get(ctx, "transportData")
			assert.ErrorIs(t, err, ErrNotFound)

			got, err = s.Get(ctx, "transportFileName")
			require.NoError(t, err)
			assert.Equal(t, "enero.xlsx", string(got))

			assert.NoError(t, s.Remove(ctx, "missing"))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, s.Len())
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape", []byte("v")))

	_, err = os.Stat(filepath.Join(dir, "__escape.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestNew(t *testing.T) {
	s, err := New(&Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(&Config{Type: StoreTypeFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(&Config{Type: "redis"})
	assert.Error(t, err)
}
