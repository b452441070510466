package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EdgeApp/infinite-ramp/ports"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ConversionTopic is the topic conversion events are published to
const ConversionTopic = "ramp.conversion"

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     ConversionTopic,
	}
}

// PublishConversion publishes a conversion event
func (p *WatermillPublisher) PublishConversion(ctx context.Context, event ports.ConversionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
