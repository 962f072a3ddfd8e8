package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/kvstore/pebble"
)

type Engine string

const (
	EngineUnknown Engine = "unknown"
	EnginePebble  Engine = "pebble"
	EngineMapDB   Engine = "mapdb"
)

const dbInfoFileName = "dbinfo"

var (
	// ErrUnknownEngine is returned if the database engine is not supported.
	ErrUnknownEngine = errors.New("unknown database engine")
)

type databaseInfo struct {
	Engine string `toml:"databaseEngine"`
}

// DatabaseEngine parses a string and returns an engine.
// Returns an error if the engine is unknown.
func DatabaseEngine(engineStr string, allowedEngines ...Engine) (Engine, error) {

	engine := Engine(strings.ToLower(engineStr))

	if len(allowedEngines) > 0 {
		supportedEngines := make([]string, len(allowedEngines))
		for i, allowedEngine := range allowedEngines {
			if engine == allowedEngine {
				return engine, nil
			}
			supportedEngines[i] = string(allowedEngine)
		}

		return EngineUnknown, errors.WithMessagef(ErrUnknownEngine, "%s, supported engines: %s", engine, strings.Join(supportedEngines, "/"))
	}

	switch engine {
	case EnginePebble:
	case EngineMapDB:
	default:
		return EngineUnknown, errors.WithMessagef(ErrUnknownEngine, "%s, supported engines: pebble/mapdb", engine)
	}

	return engine, nil
}

// CheckDatabaseEngine checks if the correct database engine is used.
// It stores a "database info file" in the database folder, or
// checks that an existing one names the configured engine.
func CheckDatabaseEngine(dbPath string, createDatabaseIfNotExists bool, dbEngine ...Engine) (Engine, error) {

	if len(dbEngine) > 0 && dbEngine[0] == EngineMapDB {
		// mapdb is in-memory, there is nothing to check
		return EngineMapDB, nil
	}

	if createDatabaseIfNotExists && len(dbEngine) == 0 {
		return EngineUnknown, errors.New("the database engine must be specified if the database should be newly created")
	}

	dbExists, err := DatabaseExists(dbPath)
	if err != nil {
		return EngineUnknown, err
	}

	if !dbExists && !createDatabaseIfNotExists {
		return EngineUnknown, fmt.Errorf("database not found (%s)", dbPath)
	}

	dbInfoFilePath := filepath.Join(dbPath, dbInfoFileName)
	if _, err := os.Stat(dbInfoFilePath); err != nil {
		if !os.IsNotExist(err) {
			return EngineUnknown, fmt.Errorf("unable to check database info file (%s): %w", dbInfoFilePath, err)
		}

		if len(dbEngine) == 0 {
			return EngineUnknown, fmt.Errorf("database info file not found (%s)", dbInfoFilePath)
		}

		if err := storeDatabaseInfoToFile(dbInfoFilePath, dbEngine[0]); err != nil {
			return EngineUnknown, err
		}

		return dbEngine[0], nil
	}

	dbEngineFromInfoFile, err := LoadDatabaseEngineFromFile(dbInfoFilePath)
	if err != nil {
		return EngineUnknown, err
	}

	if len(dbEngine) > 0 && dbEngineFromInfoFile != dbEngine[0] {
		return EngineUnknown, fmt.Errorf("database engine does not match the configuration: '%v' != '%v'", dbEngineFromInfoFile, dbEngine[0])
	}

	return dbEngineFromInfoFile, nil
}

// LoadDatabaseEngineFromFile returns the engine from the "database info file".
func LoadDatabaseEngineFromFile(path string) (Engine, error) {

	var info databaseInfo

	if err := readTOMLFromFile(path, &info); err != nil {
		return EngineUnknown, fmt.Errorf("unable to read database info file: %w", err)
	}

	return DatabaseEngine(info.Engine)
}

func storeDatabaseInfoToFile(filePath string, engine Engine) error {
	dirPath := filepath.Dir(filePath)

	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return fmt.Errorf("could not create database dir '%s': %w", dirPath, err)
	}

	info := &databaseInfo{
		Engine: string(engine),
	}

	return writeTOMLToFile(filePath, info, 0660, "# auto-generated\n# !!! do not modify this file !!!")
}

// StoreWithDefaultSettings returns a kvstore with default settings.
// It also checks if the database engine is correct.
func StoreWithDefaultSettings(path string, createDatabaseIfNotExists bool, dbEngine ...Engine) (kvstore.KVStore, error) {

	targetEngine, err := CheckDatabaseEngine(path, createDatabaseIfNotExists, dbEngine...)
	if err != nil {
		return nil, err
	}

	switch targetEngine {
	case EnginePebble:
		db, err := NewPebbleDB(path, false)
		if err != nil {
			return nil, err
		}
		return pebble.New(db), nil

	case EngineMapDB:
		return mapdb.NewMapDB(), nil

	default:
		return nil, errors.WithMessagef(ErrUnknownEngine, "%s", targetEngine)
	}
}
