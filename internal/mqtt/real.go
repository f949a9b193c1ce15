package mqtt

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
)

// DefaultBufferSize is the number of system events kept while disconnected.
const DefaultBufferSize = 100

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	Messages   notify.Messages
	BufferSize int
}

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client   paho.Client
	topic    string
	messages notify.Messages

	mu        sync.Mutex
	buf       *ringBuffer
	connected bool // set after the first successful connect
}

// NewRealPublisher creates a publisher connected to the given broker.
// Connection failures after startup are retried in the background.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.ClientID == "" {
		o.ClientID = "coffee-button"
	}

	p := &RealPublisher{
		topic:    Topic,
		messages: o.Messages,
		buf:      newRingBuffer(o.BufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, willPayload(), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect replays system events buffered while offline. After a
// reconnect it also clears the retained LWT.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected, replaying %d buffered events", len(msgs))
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err != nil {
			log.Printf("mqtt: format system payload: %v", err)
		} else {
			c.Publish(TopicSystem, 1, true, payload)
		}
	}
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// Notify publishes an intent. It fails fast while disconnected so that
// freshness is only asserted on a broker acknowledgement.
func (p *RealPublisher) Notify(ctx context.Context, intent logic.Intent) error {
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt: %w: not connected", notify.ErrNotDelivered)
	}

	text, err := p.messages.Text(intent)
	if err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("mqtt: new id: %w", err)
	}

	payload, err := FormatPayload(id.String(), intent, text)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1 so the token completes on PUBACK
	token := p.client.Publish(p.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt: %w: %w", notify.ErrNotDelivered, ctx.Err())
	case <-time.After(5 * time.Second):
		return fmt.Errorf("mqtt: %w: publish timeout", notify.ErrNotDelivered)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: %w: publish: %w", notify.ErrNotDelivered, err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker. While
// disconnected the event is buffered and replayed on reconnect.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
