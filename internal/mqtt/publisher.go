package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weathercard/internal/widget"
)

// Publisher is a widget display that mirrors every field to a retained MQTT
// topic under <prefix>/<field>, so dashboards subscribing late still see the
// current card.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
	timeout     time.Duration
	logger      *slog.Logger
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
	Logger      *slog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mqtt.publisher")

	if !cfg.Enabled {
		return &Publisher{enabled: false, logger: logger}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("mqtt connected", "broker", cfg.Broker)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(client, cfg.TopicPrefix, logger), nil
}

func newPublisher(client mqtt.Client, prefix string, logger *slog.Logger) *Publisher {
	if prefix == "" {
		prefix = "weathercard"
	}
	return &Publisher{
		client:      client,
		topicPrefix: prefix,
		enabled:     true,
		timeout:     5 * time.Second,
		logger:      logger,
	}
}

func (p *Publisher) publish(name string, retained bool, payload interface{}) {
	if !p.enabled {
		return
	}

	topic := fmt.Sprintf("%s/%s", p.topicPrefix, name)
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		p.logger.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

func (p *Publisher) SetCity(text string)        { p.publish("city", true, text) }
func (p *Publisher) SetDate(text string)        { p.publish("date", true, text) }
func (p *Publisher) SetTemperature(text string) { p.publish("temperature", true, text) }
func (p *Publisher) SetCondition(text string)   { p.publish("condition", true, text) }
func (p *Publisher) SetWind(text string)        { p.publish("wind", true, text) }
func (p *Publisher) SetHumidity(text string)    { p.publish("humidity", true, text) }
func (p *Publisher) SetToday(text string)       { p.publish("today", true, text) }

func (p *Publisher) SetTheme(theme widget.ThemeResult) {
	payload, err := json.Marshal(theme)
	if err != nil {
		p.logger.Warn("mqtt theme marshal failed", "error", err)
		return
	}
	p.publish("theme", true, payload)
}

// Alert is not retained: a notification, not part of the card state.
func (p *Publisher) Alert(message string) {
	p.publish("alert", false, message)
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
