package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/catalogomaker/backend/internal/config"
	"github.com/catalogomaker/backend/internal/model"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP project ID is not set")
	}
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" && cfg.PubSubEmulatorHost == "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// AccountEvents publishes account lifecycle events as JSON on one topic.
type AccountEvents struct {
	pub   Publisher
	topic string
}

func NewAccountEvents(pub Publisher, topic string) *AccountEvents {
	return &AccountEvents{pub: pub, topic: topic}
}

func (a *AccountEvents) PublishAccountEvent(ctx context.Context, ev model.AccountEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal account event: %w", err)
	}
	if _, err := a.pub.Publish(ctx, a.topic, payload); err != nil {
		return err
	}
	return nil
}

// NoopAccountEvents drops every event. Used when no GCP project is configured.
type NoopAccountEvents struct{}

func (NoopAccountEvents) PublishAccountEvent(context.Context, model.AccountEvent) error { return nil }
