package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/pocket-sentinel/internal/config"
)

const (
	// disconnectQuiesce is how long the broker connection is allowed to
	// flush in-flight messages before the socket closes.
	disconnectQuiesce = 250 * time.Millisecond

	// qosAtLeastOnce is the delivery guarantee used for every topic.
	qosAtLeastOnce byte = 1

	// topicStatus carries the retained status snapshot.
	topicStatus = "status"
	// topicEpisode carries alarm episode start/clear events.
	topicEpisode = "episode"
	// topicCommands carries control commands into the daemon.
	topicCommands = "commands"
)

// Options configures the broker connection.
type Options struct {
	// BrokerAddress is the broker URL, e.g. tcp://127.0.0.1:1883.
	BrokerAddress string
	// ClientID identifies this connection to the broker.
	ClientID string
	// TopicPrefix namespaces every topic this client touches.
	TopicPrefix string
	// Timeout bounds connect, publish and subscribe operations.
	Timeout time.Duration
}

// Client wraps the paho connection with prefixed topics and bounded waits.
type Client struct {
	// client is the underlying paho connection.
	client pahomqtt.Client
	// prefix namespaces every topic.
	prefix string
	// timeout bounds broker round-trips.
	timeout time.Duration
}

// Dial connects to the broker and returns a ready client.
func Dial(_ context.Context, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeout
	}

	clientOpts := pahomqtt.NewClientOptions()
	clientOpts.AddBroker(opts.BrokerAddress)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)
	clientOpts.SetConnectTimeout(opts.Timeout)

	client := pahomqtt.NewClient(clientOpts)

	token := client.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		return nil, fmt.Errorf("connect to broker %s: %w", opts.BrokerAddress, context.DeadlineExceeded)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", opts.BrokerAddress, err)
	}

	return &Client{
		client:  client,
		prefix:  opts.TopicPrefix,
		timeout: opts.Timeout,
	}, nil
}

// Close disconnects from the broker after letting in-flight messages flush.
func (c *Client) Close() {
	c.client.Disconnect(uint(disconnectQuiesce.Milliseconds()))
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// PublishJSON marshals the value and publishes it under the prefixed topic leaf.
func (c *Client) PublishJSON(leaf string, retained bool, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", leaf, err)
	}

	token := c.client.Publish(c.topic(leaf), qosAtLeastOnce, retained, payload)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish to %s: %w", c.topic(leaf), context.DeadlineExceeded)
	}

	if err = token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", c.topic(leaf), err)
	}

	return nil
}

// subscribe registers a raw payload handler on the prefixed topic leaf.
func (c *Client) subscribe(leaf string, handler func(payload []byte)) error {
	token := c.client.Subscribe(c.topic(leaf), qosAtLeastOnce,
		func(_ pahomqtt.Client, msg pahomqtt.Message) {
			handler(msg.Payload())
		})
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("subscribe to %s: %w", c.topic(leaf), context.DeadlineExceeded)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic(leaf), err)
	}

	return nil
}

// unsubscribe removes the subscription on the prefixed topic leaf.
func (c *Client) unsubscribe(leaf string) error {
	token := c.client.Unsubscribe(c.topic(leaf))
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("unsubscribe from %s: %w", c.topic(leaf), context.DeadlineExceeded)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("unsubscribe from %s: %w", c.topic(leaf), err)
	}

	return nil
}

// topic joins the prefix and the leaf.
func (c *Client) topic(leaf string) string {
	return c.prefix + "/" + leaf
}
