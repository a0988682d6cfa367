// Package events announces successful logins to the rest of the platform, by
// publishing JSON messages to a fanout exchange in RabbitMQ
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golden-vcr/server-common/rmq"
	amqp "github.com/rabbitmq/amqp091-go"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

// Exchange is the name of the AMQP exchange that login events are published to
const Exchange = "auth-events"

type Type string

const (
	TypeLogin    Type = "login"
	TypeRegister Type = "register"
)

// Event describes a user logging in via Twitter; Type is TypeRegister if the login
// created a new local account
type Event struct {
	Type        Type      `json:"type"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEvent describes the login that produced the given session
func NewEvent(s *twitterauth.Session) Event {
	eventType := TypeLogin
	if s.Registered {
		eventType = TypeRegister
	}
	return Event{
		Type:        eventType,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Timestamp:   s.IssuedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher discards all events; it's used when no AMQP server is configured
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error {
	return nil
}

// AMQPPublisher publishes events to the auth-events exchange
type AMQPPublisher struct {
	producer rmq.Producer
}

// NewAMQPPublisher declares the exchange on the given connection and returns a
// Publisher that sends events to it
func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	producer, err := rmq.NewProducer(conn, Exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize producer for %s: %w", Exchange, err)
	}
	return &AMQPPublisher{producer: producer}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.producer.Send(ctx, data)
}
