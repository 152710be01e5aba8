package repository

import "context"

type EventPublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}
