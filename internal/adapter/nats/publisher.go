package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
)

// rawPublisher is the part of *nats.Conn the publisher needs.
type rawPublisher interface {
	Publish(subject string, data []byte) error
}

type natsPublisher struct {
	conn rawPublisher
}

func NewNATSPublisher(conn rawPublisher) (repository.EventPublisher, error) {
	if conn == nil {
		return nil, errors.New("NATS connection cannot be nil")
	}
	return &natsPublisher{conn: conn}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON for subject %s: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when NATS is disabled in config.
func NewNoopPublisher() repository.EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }
