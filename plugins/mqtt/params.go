package mqtt

import (
	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/node"
)

const (
	// the bind address on which the MQTT broker listens on
	CfgMQTTBindAddress = "mqtt.bindAddress"
	// the port of the WebSocket MQTT broker, 0 disables it
	CfgMQTTWSPort = "mqtt.wsPort"
	// the path of the WebSocket MQTT broker
	CfgMQTTWSPath = "mqtt.wsPath"
	// the number of deleted topics that trigger a garbage collection of the topic manager
	CfgMQTTTopicCleanupThreshold = "mqtt.topicCleanupThreshold"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgMQTTBindAddress, "localhost:1883", "the bind address on which the MQTT broker listens on")
			fs.Int(CfgMQTTWSPort, 1888, "the port of the WebSocket MQTT broker, 0 disables it")
			fs.String(CfgMQTTWSPath, "/ws", "the path of the WebSocket MQTT broker")
			fs.Int(CfgMQTTTopicCleanupThreshold, 10000, "the number of deleted topics that trigger a garbage collection of the topic manager")
			return fs
		}(),
	},
	Masked: nil,
}
