package database

import (
	"context"

	"go.uber.org/dig"

	"github.com/gohornet/escrow/pkg/database"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/shutdown"
	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/kvstore"
)

func init() {
	CorePlugin = &node.CorePlugin{
		Pluggable: node.Pluggable{
			Name:      "Database",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
		},
	}
}

var (
	CorePlugin *node.CorePlugin
	deps       dependencies
)

type dependencies struct {
	dig.In
	EscrowStore kvstore.KVStore `name:"escrowStore"`
}

func provide(c *dig.Container) {

	type storeDeps struct {
		dig.In
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	type storeResult struct {
		dig.Out
		EscrowStore    kvstore.KVStore `name:"escrowStore"`
		DatabaseEngine database.Engine
	}

	if err := c.Provide(func(deps storeDeps) storeResult {

		engine, err := database.DatabaseEngine(deps.NodeConfig.String(CfgDatabaseEngine), database.EnginePebble, database.EngineMapDB)
		if err != nil {
			CorePlugin.LogPanic(err)
		}

		dbPath := deps.NodeConfig.String(CfgDatabasePath)
		store, err := database.StoreWithDefaultSettings(dbPath, true, engine)
		if err != nil {
			CorePlugin.LogPanicf("database initialization failed: %s", err)
		}

		CorePlugin.LogInfof("using %s database at '%s'", engine, dbPath)

		return storeResult{
			EscrowStore:    store,
			DatabaseEngine: engine,
		}
	}); err != nil {
		CorePlugin.LogPanic(err)
	}
}

func configure() {

	if err := CorePlugin.Daemon().BackgroundWorker("Close database", func(ctx context.Context) {
		<-ctx.Done()

		CorePlugin.LogInfo("Syncing databases to disk...")
		if err := deps.EscrowStore.Flush(); err != nil {
			CorePlugin.LogErrorf("flushing the database failed: %s", err)
		}
		if err := deps.EscrowStore.Close(); err != nil {
			CorePlugin.LogErrorf("closing the database failed: %s", err)
		}
		CorePlugin.LogInfo("Syncing databases to disk... done")
	}, shutdown.PriorityCloseDatabase); err != nil {
		CorePlugin.LogPanicf("failed to start worker: %s", err)
	}
}
