package ingest

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/logger"
)

const (
	connectTimeout    = 10 * time.Second
	subscribeTimeout  = 5 * time.Second
	disconnectQuiesce = 250 // ms
	qosAtMostOnce     = 0
)

// Config holds broker connection settings
type Config struct {
	Broker   string
	Port     int
	Username string
	Password string
	ClientID string
}

// BrokerURL returns the tcp:// URL for the broker
func (c Config) BrokerURL() string {
	port := c.Port
	if port == 0 {
		port = 1883
	}
	return fmt.Sprintf("tcp://%s:%d", c.Broker, port)
}

// ClientFactory builds an MQTT client from options
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// Subscriber feeds MQTT messages on the sensor topics into a Handler
type Subscriber struct {
	cfg       Config
	handler   *Handler
	log       logger.Logger
	newClient ClientFactory
}

// NewSubscriber creates a Subscriber using the paho client
func NewSubscriber(cfg Config, handler *Handler, log logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:       cfg,
		handler:   handler,
		log:       log.With("component", "mqtt"),
		newClient: mqtt.NewClient,
	}
}

// WithClientFactory replaces the client constructor. Intended for tests.
func (s *Subscriber) WithClientFactory(f ClientFactory) *Subscriber {
	s.newClient = f
	return s
}

func (s *Subscriber) options(ctx context.Context) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL()).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(true)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	// Subscriptions are re-established on every (re)connect.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.log.Info("Connected to broker", "broker", s.cfg.BrokerURL())
		for _, topic := range s.handler.Topics().List() {
			token := c.Subscribe(topic, qosAtMostOnce, s.onMessage(ctx))
			if !token.WaitTimeout(subscribeTimeout) {
				s.log.Error("Subscribe timed out", "topic", topic)
				continue
			}
			if err := token.Error(); err != nil {
				s.log.Error("Subscribe failed", "topic", topic, "error", err)
				continue
			}
			s.log.Debug("Subscribed", "topic", topic)
		}
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		s.log.Warn("Lost broker connection", "error", err)
	})
	return opts
}

func (s *Subscriber) onMessage(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		_ = s.handler.Dispatch(ctx, msg.Topic(), msg.Payload())
	}
}

// Run connects to the broker and dispatches messages until ctx is cancelled
func (s *Subscriber) Run(ctx context.Context) error {
	client := s.newClient(s.options(ctx))

	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		client.Disconnect(disconnectQuiesce)
		return nil
	}
	if err := token.Error(); err != nil {
		return errors.Unavailable("mqtt connect failed", err)
	}

	<-ctx.Done()
	s.log.Info("Disconnecting from broker")
	client.Disconnect(disconnectQuiesce)
	return nil
}
