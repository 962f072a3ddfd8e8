package mqtt

import (
	"testing"

	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/stretchr/testify/require"
)

type noopProvider struct{}

func (noopProvider) Subscribe(_ []byte, qos byte, _ interface{}) (byte, error) { return qos, nil }
func (noopProvider) Unsubscribe(_ []byte, _ interface{}) error                 { return nil }
func (noopProvider) Subscribers(_ []byte, _ byte, _ *[]interface{}, _ *[]byte) error {
	return nil
}
func (noopProvider) Retain(_ *packets.PublishPacket) error                { return nil }
func (noopProvider) Retained(_ []byte, _ *[]*packets.PublishPacket) error { return nil }
func (noopProvider) Close() error                                         { return nil }

func newTestTopicManager(cleanupThreshold int) (*topicManager, *[]string) {
	var subscribed []string
	return &topicManager{
		mem:              noopProvider{},
		subscribedTopics: make(map[string]int),
		onSubscribe: func(topic []byte) {
			subscribed = append(subscribed, string(topic))
		},
		cleanupThreshold: cleanupThreshold,
	}, &subscribed
}

func TestTopicManagerCountsSubscriptions(t *testing.T) {
	mgr, subscribed := newTestTopicManager(0)

	topic := "escrows/0102/contributionMade"

	_, err := mgr.Subscribe([]byte(topic), 0, "client1")
	require.NoError(t, err)
	_, err = mgr.Subscribe([]byte(topic), 0, "client2")
	require.NoError(t, err)

	require.True(t, mgr.hasSubscribers(topic))
	require.False(t, mgr.hasSubscribers("escrows/0102/voteCast"))
	require.Equal(t, 1, mgr.Size())
	require.Equal(t, []string{topic, topic}, *subscribed)

	require.NoError(t, mgr.Unsubscribe([]byte(topic), "client1"))
	require.True(t, mgr.hasSubscribers(topic))

	require.NoError(t, mgr.Unsubscribe([]byte(topic), "client2"))
	require.False(t, mgr.hasSubscribers(topic))
	require.Zero(t, mgr.Size())

	// unknown topics are ignored
	require.NoError(t, mgr.Unsubscribe([]byte(topic), "client2"))
	require.Zero(t, mgr.Size())
}

func TestTopicManagerCleanup(t *testing.T) {
	mgr, _ := newTestTopicManager(2)

	for _, topic := range []string{"a", "b", "c"} {
		_, err := mgr.Subscribe([]byte(topic), 0, "client")
		require.NoError(t, err)
	}

	require.NoError(t, mgr.Unsubscribe([]byte("a"), "client"))
	require.Equal(t, 1, mgr.subscribedTopicsDeleted)

	require.NoError(t, mgr.Unsubscribe([]byte("b"), "client"))
	require.Zero(t, mgr.subscribedTopicsDeleted)

	require.True(t, mgr.hasSubscribers("c"))
	require.Equal(t, 1, mgr.Size())
}
