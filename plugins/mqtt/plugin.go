package mqtt

import (
	"context"

	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/workerpool"

	"github.com/gohornet/escrow/pkg/model/escrow"
	mqttpkg "github.com/gohornet/escrow/pkg/mqtt"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/shutdown"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.Disabled,
		Pluggable: node.Pluggable{
			Name:      "MQTT",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
			Run:       run,
		},
	}
}

const (
	workerCount     = 1
	workerQueueSize = 10000
)

var (
	Plugin *node.Plugin
	deps   dependencies

	recordWorkerPool *workerpool.WorkerPool
)

type dependencies struct {
	dig.In
	EscrowManager *escrow.Manager
	MQTTBroker    *mqttpkg.Broker
}

func provide(c *dig.Container) {

	type brokerDeps struct {
		dig.In
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	if err := c.Provide(func(deps brokerDeps) *mqttpkg.Broker {
		broker, err := mqttpkg.NewBroker(
			deps.NodeConfig.String(CfgMQTTBindAddress),
			deps.NodeConfig.Int(CfgMQTTWSPort),
			deps.NodeConfig.String(CfgMQTTWSPath),
			deps.NodeConfig.Int(CfgMQTTTopicCleanupThreshold),
			func(topic []byte) {
				Plugin.LogDebugf("Subscribe to topic: %s", string(topic))
			},
			func(topic []byte) {
				Plugin.LogDebugf("Unsubscribe from topic: %s", string(topic))
			})
		if err != nil {
			Plugin.LogPanicf("MQTT broker init failed! %s", err)
		}
		return broker
	}); err != nil {
		Plugin.LogPanic(err)
	}
}

func configure() {

	recordWorkerPool = workerpool.New(func(task workerpool.Task) {
		publishRecord(task.Param(0).(escrow.LogRecord))
		task.Return(nil)
	}, workerpool.WorkerCount(workerCount), workerpool.QueueSize(workerQueueSize), workerpool.FlushTasksAtShutdown(true))
}

func run() {

	Plugin.LogInfof("Starting MQTT Broker (port %s) ...", deps.MQTTBroker.Config().Port)

	onLogRecord := events.NewClosure(func(record escrow.LogRecord) {
		// drop records nobody listens to before they reach the queue
		if !hasSubscribers(record) {
			return
		}

		if _, added := recordWorkerPool.TrySubmit(record); !added {
			Plugin.LogWarnf("MQTT queue full, dropped %s record of escrow %s", record.RecordType(), record.Escrow().ToHex())
		}
	})

	if err := Plugin.Daemon().BackgroundWorker("MQTT Broker", func(ctx context.Context) {
		go func() {
			deps.MQTTBroker.Start()
			Plugin.LogInfof("Starting MQTT Broker (port %s) ... done", deps.MQTTBroker.Config().Port)
		}()

		if deps.MQTTBroker.Config().Port != "" {
			Plugin.LogInfof("You can now listen to MQTT via: http://%s:%s", deps.MQTTBroker.Config().Host, deps.MQTTBroker.Config().Port)
		}

		if deps.MQTTBroker.Config().WsPort != "" {
			Plugin.LogInfof("You can now listen to MQTT via: ws://%s:%s%s", deps.MQTTBroker.Config().Host, deps.MQTTBroker.Config().WsPort, deps.MQTTBroker.Config().WsPath)
		}

		<-ctx.Done()
		Plugin.LogInfo("Stopping MQTT Broker ...")
		Plugin.LogInfo("Stopping MQTT Broker ... done")
	}, shutdown.PriorityMQTTBroker); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}

	if err := Plugin.Daemon().BackgroundWorker("MQTT Events", func(ctx context.Context) {
		Plugin.LogInfo("Starting MQTT Events ... done")

		for _, event := range deps.EscrowManager.Events.All() {
			event.Attach(onLogRecord)
		}
		recordWorkerPool.Start()

		<-ctx.Done()

		for _, event := range deps.EscrowManager.Events.All() {
			event.Detach(onLogRecord)
		}
		recordWorkerPool.StopAndWait()

		Plugin.LogInfo("Stopping MQTT Events ... done")
	}, shutdown.PriorityMQTTBroker); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}

func hasSubscribers(record escrow.LogRecord) bool {
	for _, topic := range topicsForRecord(record) {
		if deps.MQTTBroker.HasSubscribers(topic) {
			return true
		}
	}
	return false
}

func publishRecord(record escrow.LogRecord) {

	payload, err := recordPayload(record, deps.EscrowManager.Bech32HRP())
	if err != nil {
		Plugin.LogWarnf("serializing %s record failed: %s", record.RecordType(), err)
		return
	}

	for _, topic := range topicsForRecord(record) {
		if deps.MQTTBroker.HasSubscribers(topic) {
			deps.MQTTBroker.Send(topic, payload)
		}
	}
}
