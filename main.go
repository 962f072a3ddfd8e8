package main

import (
	"github.com/gohornet/escrow/core/app"
	"github.com/gohornet/escrow/core/database"
	"github.com/gohornet/escrow/core/escrow"
	"github.com/gohornet/escrow/core/gracefulshutdown"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/plugins/escrowapi"
	"github.com/gohornet/escrow/plugins/mqtt"
	"github.com/gohornet/escrow/plugins/profiling"
	"github.com/gohornet/escrow/plugins/prometheus"
	"github.com/gohornet/escrow/plugins/restapi"
)

func main() {
	node.Run(
		node.WithInitPlugin(app.InitPlugin),
		node.WithCorePlugins(
			gracefulshutdown.CorePlugin,
			database.CorePlugin,
			escrow.CorePlugin,
		),
		node.WithPlugins(
			restapi.Plugin,
			escrowapi.Plugin,
			mqtt.Plugin,
			prometheus.Plugin,
			profiling.Plugin,
		),
	)
}
