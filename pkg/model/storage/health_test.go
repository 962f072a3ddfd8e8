package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/model/storage"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
)

func TestStoreHealthTracker(t *testing.T) {

	store := mapdb.NewMapDB()
	tracker := storage.NewStoreHealthTracker(store)

	corrupted, err := tracker.IsCorrupted()
	require.NoError(t, err)
	require.False(t, corrupted)

	version, err := tracker.DatabaseVersion()
	require.NoError(t, err)
	require.Equal(t, storage.DBVersion, version)

	correct, err := tracker.CheckCorrectDatabaseVersion()
	require.NoError(t, err)
	require.True(t, correct)

	require.NoError(t, tracker.MarkCorrupted())

	// a new tracker on the same store sees the marker
	corrupted, err = storage.NewStoreHealthTracker(store).IsCorrupted()
	require.NoError(t, err)
	require.True(t, corrupted)

	require.NoError(t, tracker.MarkHealthy())
	corrupted, err = tracker.IsCorrupted()
	require.NoError(t, err)
	require.False(t, corrupted)
}

func TestStoreHealthTrackerVersionMismatch(t *testing.T) {

	store := mapdb.NewMapDB()
	require.NoError(t, store.WithRealm([]byte{storage.StorePrefixHealth}).Set([]byte("dbVersion"), []byte{storage.DBVersion + 1}))

	correct, err := storage.NewStoreHealthTracker(store).CheckCorrectDatabaseVersion()
	require.NoError(t, err)
	require.False(t, correct)
}
