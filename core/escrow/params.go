package escrow

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/node"
)

const (
	// the bech32 human readable part of the addresses
	CfgEscrowBech32HRP = "escrow.bech32HRP"
	// the path to the campaign registry database folder
	CfgRegistryPath = "registry.path"
	// the URL of the payout service, the in-memory journal is used if empty
	CfgPayoutWebhookURL = "payout.webhookURL"
	// the timeout for a single payout request
	CfgPayoutTimeout = "payout.timeout"
	// the interval in which time based status changes are persisted, 0 disables it
	CfgEscrowStatusSyncInterval = "escrow.statusSyncInterval"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgEscrowBech32HRP, "atoi", "the bech32 human readable part of the addresses")
			fs.String(CfgRegistryPath, "registrydb", "the path to the campaign registry database folder")
			fs.String(CfgPayoutWebhookURL, "", "the URL of the payout service, the in-memory journal is used if empty")
			fs.Duration(CfgPayoutTimeout, 10*time.Second, "the timeout for a single payout request")
			fs.Duration(CfgEscrowStatusSyncInterval, time.Minute, "the interval in which time based status changes are persisted, 0 disables it")
			return fs
		}(),
	},
	Masked: []string{CfgPayoutWebhookURL},
}
