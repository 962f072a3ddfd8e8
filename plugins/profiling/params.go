package profiling

import (
	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/node"
)

const (
	// the bind address on which the profiler listens on
	CfgProfilingBindAddress = "profiling.bindAddress"
	// the fraction of mutex contention events that are reported, 0 disables it
	CfgProfilingMutexProfileFraction = "profiling.mutexProfileFraction"
	// the rate of goroutine blocking events that are reported, 0 disables it
	CfgProfilingBlockProfileRate = "profiling.blockProfileRate"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgProfilingBindAddress, "localhost:6060", "the bind address on which the profiler listens on")
			fs.Int(CfgProfilingMutexProfileFraction, 5, "the fraction of mutex contention events that are reported, 0 disables it")
			fs.Int(CfgProfilingBlockProfileRate, 5, "the rate of goroutine blocking events that are reported, 0 disables it")
			return fs
		}(),
	},
	Masked: nil,
}
