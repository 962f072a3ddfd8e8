package node

import (
	"strings"
	"sync"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/logger"
)

// PluginParams defines the parameters configuration of a plugin.
type PluginParams struct {
	// The parameters of the plugin under for the defined configuration.
	Params map[string]*flag.FlagSet
	// The configuration values to mask.
	Masked []string
}

// Pluggable is something which extends the Node's capabilities.
type Pluggable struct {
	// A reference to the Node instance.
	Node *Node
	// The name of the plugin.
	Name string
	// The config parameters for this plugin.
	Params *PluginParams
	// The function to call to initialize the plugin dependencies.
	DepsFunc interface{}
	// Provide gets called in the provide stage of node initialization.
	Provide ProvideFunc
	// Configure gets called in the configure stage of node initialization.
	Configure Callback
	// Run gets called in the run stage of node initialization.
	Run Callback

	loggerOnce sync.Once
	logger     *logger.Logger
}

// Logger returns the named logger of the plugin.
// It must not be used before the global logger was initialized.
func (p *Pluggable) Logger() *logger.Logger {
	p.loggerOnce.Do(func() {
		p.logger = logger.NewLogger(p.Name)
	})
	return p.logger
}

// LogDebugf uses fmt.Sprintf to construct and log a message.
func (p *Pluggable) LogDebugf(template string, args ...interface{}) {
	p.Logger().Debugf(template, args...)
}

// LogInfo uses fmt.Sprint to construct and log a message.
func (p *Pluggable) LogInfo(args ...interface{}) {
	p.Logger().Info(args...)
}

// LogInfof uses fmt.Sprintf to construct and log a message.
func (p *Pluggable) LogInfof(template string, args ...interface{}) {
	p.Logger().Infof(template, args...)
}

// LogWarnf uses fmt.Sprintf to construct and log a message.
func (p *Pluggable) LogWarnf(template string, args ...interface{}) {
	p.Logger().Warnf(template, args...)
}

// LogErrorf uses fmt.Sprintf to construct and log a message.
func (p *Pluggable) LogErrorf(template string, args ...interface{}) {
	p.Logger().Errorf(template, args...)
}

// LogPanic uses fmt.Sprint to construct and log a message, then panics.
func (p *Pluggable) LogPanic(args ...interface{}) {
	p.Logger().Panic(args...)
}

// LogPanicf uses fmt.Sprintf to construct and log a message, then panics.
func (p *Pluggable) LogPanicf(template string, args ...interface{}) {
	p.Logger().Panicf(template, args...)
}

// InitPlugin is the module initializing configuration of the node.
// A Node can only have one of such modules.
type InitPlugin struct {
	Pluggable
	// Init gets called in the initialization stage of the node.
	Init InitFunc
	// The configs this InitPlugin brings to the node.
	Configs map[string]*configuration.Configuration
}

// CorePlugin is a plugin essential for node operation.
// It can not be disabled.
type CorePlugin struct {
	Pluggable
}

func (c *CorePlugin) Daemon() daemon.Daemon {
	return c.Node.Daemon()
}

const (
	Disabled = iota
	Enabled
)

type Plugin struct {
	Pluggable
	// The status of the plugin.
	Status int
}

func (p *Plugin) Daemon() daemon.Daemon {
	return p.Node.Daemon()
}

func (p *Plugin) GetIdentifier() string {
	return strings.ToLower(strings.Replace(p.Name, " ", "", -1))
}
