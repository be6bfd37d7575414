package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Event kinds.
const (
	LayoutSaved    = "layout.saved"
	LayoutLoaded   = "layout.loaded"
	LayoutDeleted  = "layout.deleted"
	CanvasImported = "canvas.imported"
)

// Event announces a change to persisted or imported layouts.
type Event struct {
	Kind     string    `json:"kind"`
	CanvasID string    `json:"canvas_id,omitempty"`
	LayoutID string    `json:"layout_id,omitempty"`
	Rooms    int       `json:"rooms"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// ============================================================
// MQTT
// ============================================================

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MQTTPublisher публикует события в <prefix>/<kind> с QoS 1.
type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
}

// NewMQTT подключается к брокеру.
func NewMQTT(cfg MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client, prefix: cfg.TopicPrefix, timeout: 5 * time.Second}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, ev Event) error {
	topic, payload, err := Encode(p.prefix, ev)
	if err != nil {
		return err
	}

	token := p.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// Encode returns the topic and JSON payload for ev.
func Encode(prefix string, ev Event) (string, []byte, error) {
	if ev.Kind == "" {
		return "", nil, fmt.Errorf("event kind required")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", nil, err
	}

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ev.Kind, payload, nil
	}
	return prefix + "/" + ev.Kind, payload, nil
}
