package profiling

import (
	"context"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/shutdown"
	"github.com/iotaledger/hive.go/configuration"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.Disabled,
		Pluggable: node.Pluggable{
			Name:     "Profiling",
			DepsFunc: func(cDeps dependencies) { deps = cDeps },
			Params:   params,
			Run:      run,
		},
	}
}

var (
	Plugin *node.Plugin
	deps   dependencies
)

type dependencies struct {
	dig.In
	NodeConfig *configuration.Configuration `name:"nodeConfig"`
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func run() {
	runtime.SetMutexProfileFraction(deps.NodeConfig.Int(CfgProfilingMutexProfileFraction))
	runtime.SetBlockProfileRate(deps.NodeConfig.Int(CfgProfilingBlockProfileRate))

	bindAddr := deps.NodeConfig.String(CfgProfilingBindAddress)
	server := &http.Server{Addr: bindAddr, Handler: newServeMux()}

	if err := Plugin.Daemon().BackgroundWorker("Profiling", func(ctx context.Context) {
		go func() {
			Plugin.LogInfof("You can now access the profiling server using: http://%s/debug/pprof/", bindAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Plugin.LogWarnf("Stopped profiling server due to an error (%s)", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCtxCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			Plugin.LogWarnf("Stopping profiling server failed: %s", err)
		}
	}, shutdown.PriorityProfiling); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}
