package gracefulshutdown

import (
	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/shutdown"
)

const (
	// the maximum time to wait for background workers to finish during shutdown before terminating the process
	CfgNodeStopGracePeriod = "node.stopGracePeriod"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.Duration(CfgNodeStopGracePeriod, shutdown.DefaultStopGracePeriod, "the maximum time to wait for background workers to finish during shutdown before terminating the process")
			return fs
		}(),
	},
	Masked: nil,
}
