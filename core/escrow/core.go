package escrow

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"github.com/gohornet/escrow/pkg/metrics"
	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/registry"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/payout"
	"github.com/gohornet/escrow/pkg/shutdown"
	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/timeutil"
	iotago "github.com/iotaledger/iota.go/v3"
)

func init() {
	CorePlugin = &node.CorePlugin{
		Pluggable: node.Pluggable{
			Name:      "Escrow",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
			Run:       run,
		},
	}
}

var (
	CorePlugin *node.CorePlugin
	deps       dependencies

	onLogRecord     *events.Closure
	onEscrowMetrics *events.Closure
	onCriticalError *events.Closure
)

type dependencies struct {
	dig.In
	EscrowManager   *escrow.Manager
	Registry        *registry.Registry
	EscrowMetrics   *metrics.EscrowMetrics
	NodeConfig      *configuration.Configuration `name:"nodeConfig"`
	ShutdownHandler *shutdown.ShutdownHandler
}

func provide(c *dig.Container) {

	if err := c.Provide(func() *metrics.EscrowMetrics {
		return &metrics.EscrowMetrics{}
	}); err != nil {
		CorePlugin.LogPanic(err)
	}

	type transfererDeps struct {
		dig.In
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	if err := c.Provide(func(deps transfererDeps) escrow.Transferer {
		hrp := iotago.NetworkPrefix(deps.NodeConfig.String(CfgEscrowBech32HRP))

		url := deps.NodeConfig.String(CfgPayoutWebhookURL)
		if url == "" {
			CorePlugin.LogWarnf("no payout service configured, transfers are only journaled in memory")
			return payout.NewJournal()
		}

		return payout.NewWebhook(url, hrp, deps.NodeConfig.Duration(CfgPayoutTimeout))
	}); err != nil {
		CorePlugin.LogPanic(err)
	}

	type managerDeps struct {
		dig.In
		NodeConfig  *configuration.Configuration `name:"nodeConfig"`
		EscrowStore kvstore.KVStore              `name:"escrowStore"`
		Transferer  escrow.Transferer
	}

	if err := c.Provide(func(deps managerDeps) *escrow.Manager {
		manager, err := escrow.NewManager(deps.EscrowStore,
			escrow.WithLogger(CorePlugin.Logger()),
			escrow.WithTransferer(deps.Transferer),
			escrow.WithBech32HRP(iotago.NetworkPrefix(deps.NodeConfig.String(CfgEscrowBech32HRP))),
		)
		if err != nil {
			CorePlugin.LogPanicf("failed to load escrows: %s", err)
		}
		return manager
	}); err != nil {
		CorePlugin.LogPanic(err)
	}

	type registryDeps struct {
		dig.In
		NodeConfig    *configuration.Configuration `name:"nodeConfig"`
		EscrowManager *escrow.Manager
	}

	if err := c.Provide(func(deps registryDeps) *registry.Registry {
		r, err := registry.NewRegistry(deps.NodeConfig.String(CfgRegistryPath), deps.EscrowManager)
		if err != nil {
			CorePlugin.LogPanicf("failed to open the campaign registry: %s", err)
		}
		return r
	}); err != nil {
		CorePlugin.LogPanic(err)
	}
}

func configure() {

	count, err := deps.Registry.Count()
	if err != nil {
		CorePlugin.LogPanicf("failed to count campaigns: %s", err)
	}

	for status, escrowCount := range deps.EscrowManager.EscrowsWithStatus() {
		CorePlugin.LogInfof("%d escrows in status %s", escrowCount, status)
	}
	CorePlugin.LogInfof("%d campaigns indexed", count)

	onLogRecord = events.NewClosure(func(record escrow.LogRecord) {
		CorePlugin.LogDebugf("escrow %s: %s", record.Escrow().ToHex(), record.RecordType())
	})
	onEscrowMetrics = events.NewClosure(deps.EscrowMetrics.Record)
	onCriticalError = events.NewClosure(func(err error) {
		deps.ShutdownHandler.SelfShutdown(fmt.Sprintf("escrow manager hit a critical error: %s", err))
	})
}

func run() {

	if err := CorePlugin.Daemon().BackgroundWorker("Escrow[Events]", func(ctx context.Context) {
		attachEvents()
		<-ctx.Done()
		detachEvents()

		CorePlugin.LogInfo("Persisting escrows...")
		if err := deps.EscrowManager.CloseDatabase(); err != nil {
			CorePlugin.LogErrorf("persisting escrows failed: %s", err)
		}
		CorePlugin.LogInfo("Persisting escrows... done")
	}, shutdown.PriorityEscrowManager); err != nil {
		CorePlugin.LogPanicf("failed to start worker: %s", err)
	}

	if interval := deps.NodeConfig.Duration(CfgEscrowStatusSyncInterval); interval > 0 {
		if err := CorePlugin.Daemon().BackgroundWorker("Escrow[StatusSync]", func(ctx context.Context) {
			ticker := timeutil.NewTicker(syncStatuses, interval, ctx)
			ticker.WaitForGracefulShutdown()
		}, shutdown.PriorityStatusSync); err != nil {
			CorePlugin.LogPanicf("failed to start worker: %s", err)
		}
	}

	if err := CorePlugin.Daemon().BackgroundWorker("Close registry", func(ctx context.Context) {
		<-ctx.Done()
		if err := deps.Registry.CloseDatabase(); err != nil {
			CorePlugin.LogErrorf("closing the campaign registry failed: %s", err)
		}
	}, shutdown.PriorityCloseRegistry); err != nil {
		CorePlugin.LogPanicf("failed to start worker: %s", err)
	}
}

func syncStatuses() {
	changed, err := deps.EscrowManager.SyncStatuses(context.Background())
	if err != nil {
		CorePlugin.LogWarnf("%s", err)
	}
	if changed > 0 {
		CorePlugin.LogInfof("%d escrows changed their status", changed)
	}
}

func attachEvents() {
	for _, event := range deps.EscrowManager.Events.All() {
		event.Attach(onLogRecord)
		event.Attach(onEscrowMetrics)
	}
	deps.EscrowManager.Events.CriticalError.Attach(onCriticalError)
}

func detachEvents() {
	for _, event := range deps.EscrowManager.Events.All() {
		event.Detach(onLogRecord)
		event.Detach(onEscrowMetrics)
	}
	deps.EscrowManager.Events.CriticalError.Detach(onCriticalError)
}
