package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/cerberus/ports"
)

const (
	// LoginTopic carries completed-login events
	LoginTopic = "cerberus.login"

	// LogoutTopic carries session-revocation events
	LogoutTopic = "cerberus.logout"
)

// LoginEvent represents a completed login
type LoginEvent struct {
	Email  string    `json:"email"`
	Method string    `json:"method"` // "mfa" or "session"
	At     time.Time `json:"at"`
}

// LogoutEvent represents a session revocation
type LogoutEvent struct {
	Email string    `json:"email"`
	At    time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a completed-login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, email, method string) error {
	return p.publish(LoginTopic, LoginEvent{Email: email, Method: method, At: time.Now()})
}

// PublishLogout publishes a session-revocation event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, email string) error {
	return p.publish(LogoutTopic, LogoutEvent{Email: email, At: time.Now()})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
