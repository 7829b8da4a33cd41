// Package publish pushes finished truck plans to downstream consumers over
// MQTT. Publishing is optional: the planner works the same without it.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	corelogger "github.com/freightplan/freightplan/core/logger"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/infra/logger"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	TopicBase  string `json:"topic_base"`
	QoS        byte   `json:"qos"`
	TimeoutSec int    `json:"timeout_sec"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TopicBase == "" {
		c.TopicBase = "freight/plans"
	}
	if c.ClientID == "" {
		c.ClientID = "freightplan"
	}
	if c.TimeoutSec <= 0 {
		c.TimeoutSec = 10
	}
}

// pahoClient narrows the Paho surface used here; tests substitute a fake.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends each truck record to <topic_base>/<group_id>.
type Publisher struct {
	cli     pahoClient
	cfg     Config
	timeout time.Duration
	log     corelogger.Logger
}

// New connects a publisher to the configured broker.
func New(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password)
	cli := paho.NewClient(opts)
	p := &Publisher{cli: cli, cfg: cfg, timeout: time.Duration(cfg.TimeoutSec) * time.Second, log: logger.New("plan-publisher")}
	tok := cli.Connect()
	if !tok.WaitTimeout(p.timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return p, nil
}

// newWithClient is the injection point for tests.
func newWithClient(cli pahoClient, cfg Config) *Publisher {
	cfg.SetDefaults()
	return &Publisher{cli: cli, cfg: cfg, timeout: time.Duration(cfg.TimeoutSec) * time.Second, log: logger.New("plan-publisher")}
}

// PublishTrucks emits one JSON message per truck. The first failure aborts
// the batch.
func (p *Publisher) PublishTrucks(planID string, trucks []model.Truck) error {
	for _, t := range trucks {
		payload, err := json.Marshal(struct {
			PlanID string `json:"plan_id"`
			model.Truck
		}{PlanID: planID, Truck: t})
		if err != nil {
			return fmt.Errorf("marshal truck %s: %w", t.ID, err)
		}
		topic := fmt.Sprintf("%s/%s", p.cfg.TopicBase, t.GroupID)
		tok := p.cli.Publish(topic, p.cfg.QoS, false, payload)
		if !tok.WaitTimeout(p.timeout) {
			return fmt.Errorf("publish %s timed out", t.ID)
		}
		if err := tok.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", t.ID, err)
		}
		p.log.Debugf("published %s to %s", t.ID, topic)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
