package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatabaseEngine(t *testing.T) {
	engine, err := DatabaseEngine("Pebble")
	require.NoError(t, err)
	require.Equal(t, EnginePebble, engine)

	engine, err = DatabaseEngine("mapdb", EnginePebble, EngineMapDB)
	require.NoError(t, err)
	require.Equal(t, EngineMapDB, engine)

	_, err = DatabaseEngine("rocksdb")
	require.ErrorIs(t, err, ErrUnknownEngine)

	_, err = DatabaseEngine("mapdb", EnginePebble)
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestCheckDatabaseEngine(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "escrowdb")

	// nothing exists yet
	_, err := CheckDatabaseEngine(dbPath, false)
	require.Error(t, err)

	engine, err := CheckDatabaseEngine(dbPath, true, EnginePebble)
	require.NoError(t, err)
	require.Equal(t, EnginePebble, engine)

	_, err = os.Stat(filepath.Join(dbPath, dbInfoFileName))
	require.NoError(t, err)

	// the info file decides if no engine is given
	engine, err = CheckDatabaseEngine(dbPath, false)
	require.NoError(t, err)
	require.Equal(t, EnginePebble, engine)

	engine, err = LoadDatabaseEngineFromFile(filepath.Join(dbPath, dbInfoFileName))
	require.NoError(t, err)
	require.Equal(t, EnginePebble, engine)

	_, err = CheckDatabaseEngine(dbPath, false, "other")
	require.Error(t, err)

	engine, err = CheckDatabaseEngine(dbPath, false, EngineMapDB)
	require.NoError(t, err)
	require.Equal(t, EngineMapDB, engine)
}

func TestStoreWithDefaultSettings(t *testing.T) {
	store, err := StoreWithDefaultSettings("", true, EngineMapDB)
	require.NoError(t, err)

	require.NoError(t, store.Set([]byte("key"), []byte("value")))
	value, err := store.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)
}
