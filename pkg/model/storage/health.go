package storage

import (
	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/kvstore"
)

const (
	// DBVersion is the version of the database scheme.
	DBVersion byte = 1

	// StorePrefixHealth is the realm of the health records.
	StorePrefixHealth byte = 255
)

var (
	keyCorrupted = []byte("dbCorrupted")
	keyVersion   = []byte("dbVersion")
)

// StoreHealthTracker marks a store as corrupted while it is in use,
// so an unclean shutdown is detected on the next start.
type StoreHealthTracker struct {
	store kvstore.KVStore
}

func NewStoreHealthTracker(store kvstore.KVStore) *StoreHealthTracker {
	s := &StoreHealthTracker{
		store: store.WithRealm([]byte{StorePrefixHealth}),
	}
	_ = s.setDatabaseVersion(DBVersion)
	return s
}

func (s *StoreHealthTracker) MarkCorrupted() error {

	if err := s.store.Set(keyCorrupted, []byte{}); err != nil {
		return errors.Wrap(NewDatabaseError(err), "failed to set database health status")
	}
	return s.store.Flush()
}

func (s *StoreHealthTracker) MarkHealthy() error {

	if err := s.store.Delete(keyCorrupted); err != nil {
		return errors.Wrap(NewDatabaseError(err), "failed to set database health status")
	}

	return nil
}

func (s *StoreHealthTracker) IsCorrupted() (bool, error) {

	contains, err := s.store.Has(keyCorrupted)
	if err != nil {
		return true, errors.Wrap(NewDatabaseError(err), "failed to read database health status")
	}
	return contains, nil
}

// DatabaseVersion returns the database version.
func (s *StoreHealthTracker) DatabaseVersion() (byte, error) {

	value, err := s.store.Get(keyVersion)
	if err != nil {
		return 0, errors.Wrap(NewDatabaseError(err), "failed to read database version")
	}

	if len(value) < 1 {
		return 0, errors.New("failed to read database version: empty value")
	}

	return value[0], nil
}

func (s *StoreHealthTracker) setDatabaseVersion(version byte) error {

	_, err := s.store.Get(keyVersion)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		// Only create the entry, if it doesn't exist already (fresh database)
		if err := s.store.Set(keyVersion, []byte{version}); err != nil {
			return errors.Wrap(NewDatabaseError(err), "failed to set database version")
		}
	}
	return nil
}

func (s *StoreHealthTracker) CheckCorrectDatabaseVersion() (bool, error) {

	version, err := s.DatabaseVersion()
	if err != nil {
		return false, err
	}

	return version == DBVersion, nil
}
