package mqtt

import (
	"fmt"
	"net"

	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/fhmq/hmq/broker"
)

const (
	workerNumber = 4096
)

// Broker is a simple mqtt publisher abstraction.
type Broker struct {
	broker       *broker.Broker
	config       *broker.Config
	topicManager *topicManager
}

// NewBroker creates a new broker.
// wsPort and wsPath configure the websocket listener, a wsPort of 0 disables it.
func NewBroker(bindAddress string, wsPort int, wsPath string, topicCleanupThreshold int, onSubscribe OnSubscribeHandler, onUnsubscribe OnUnsubscribeHandler) (*Broker, error) {

	host, port, err := net.SplitHostPort(bindAddress)
	if err != nil {
		return nil, fmt.Errorf("parsing bind address failed: %w", err)
	}

	args := []string{
		fmt.Sprintf("--worker=%d", workerNumber),
		fmt.Sprintf("--host=%s", host),
		fmt.Sprintf("--port=%s", port),
	}
	if wsPort > 0 {
		args = append(args,
			fmt.Sprintf("--wsport=%d", wsPort),
			fmt.Sprintf("--wspath=%s", wsPath),
		)
	}

	c, err := broker.ConfigureConfig(args)
	if err != nil {
		return nil, fmt.Errorf("configure broker config error: %w", err)
	}

	t := newTopicManager(onSubscribe, onUnsubscribe, topicCleanupThreshold)

	b, err := broker.NewBroker(c)
	if err != nil {
		return nil, fmt.Errorf("create new broker error: %w", err)
	}

	return &Broker{
		broker:       b,
		config:       c,
		topicManager: t,
	}, nil
}

// Start the broker.
func (b *Broker) Start() {
	b.broker.Start()
}

// Config returns the broker config instance.
func (b *Broker) Config() *broker.Config {
	return b.config
}

// HasSubscribers returns true if at least one client subscribed to the topic.
func (b *Broker) HasSubscribers(topic string) bool {
	return b.topicManager.hasSubscribers(topic)
}

// TopicsManagerSize returns the number of topics with subscribers.
func (b *Broker) TopicsManagerSize() int {
	return b.topicManager.Size()
}

// Send publishes a message.
func (b *Broker) Send(topic string, payload []byte) {

	packet := packets.NewControlPacket(packets.Publish).(*packets.PublishPacket)
	packet.TopicName = topic
	packet.Qos = 0
	packet.Payload = payload

	b.broker.PublishMessage(packet)
}
