package shutdown

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/logger"
)

const (
	// DefaultStopGracePeriod is the default time to wait for background workers to terminate.
	DefaultStopGracePeriod = 5 * time.Minute
)

// ShutdownHandler waits until a shutdown signal was received or the node tried to shut down itself,
// and shuts down all background workers gracefully.
type ShutdownHandler struct {
	log             *logger.Logger
	daemon          daemon.Daemon
	stopGracePeriod time.Duration

	gracefulStop chan os.Signal
	selfShutdown chan string
}

// NewShutdownHandler creates a new shutdown handler.
// After the stop grace period the process is killed even if workers are still running.
func NewShutdownHandler(log *logger.Logger, daemon daemon.Daemon, stopGracePeriod time.Duration) *ShutdownHandler {
	if stopGracePeriod <= 0 {
		stopGracePeriod = DefaultStopGracePeriod
	}

	gs := &ShutdownHandler{
		log:             log,
		daemon:          daemon,
		stopGracePeriod: stopGracePeriod,
		gracefulStop:    make(chan os.Signal, 1),
		selfShutdown:    make(chan string, 1),
	}

	signal.Notify(gs.gracefulStop, syscall.SIGTERM, syscall.SIGINT)

	return gs
}

// SelfShutdown instructs the node to shut down cleanly without receiving any interrupt signal.
// Only the first reason is kept.
func (gs *ShutdownHandler) SelfShutdown(reason string) {
	select {
	case gs.selfShutdown <- reason:
	default:
	}
}

// Run starts the ShutdownHandler go routine.
func (gs *ShutdownHandler) Run() {

	go func() {
		select {
		case <-gs.gracefulStop:
			gs.log.Warnf("Received shutdown request - waiting (max %s) to finish processing ...", gs.stopGracePeriod)
		case reason := <-gs.selfShutdown:
			gs.log.Warnf("Node self-shutdown: %s; waiting (max %s) to finish processing ...", reason, gs.stopGracePeriod)
		}

		go gs.watchdog()

		gs.daemon.ShutdownAndWait()
	}()
}

// watchdog reports the remaining workers every second and kills the process after the grace period.
func (gs *ShutdownHandler) watchdog() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	deadline := time.Now().Add(gs.stopGracePeriod)
	for now := range ticker.C {
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			gs.log.Fatal("Background processes did not terminate in time! Forcing shutdown ...")
		}

		processList := ""
		if running := gs.daemon.GetRunningBackgroundWorkers(); len(running) > 0 {
			processList = "(" + strings.Join(running, ", ") + ") "
		}

		gs.log.Warnf("Received shutdown request - waiting (max %s) to finish processing %s...", remaining.Round(time.Second), processList)
	}
}
