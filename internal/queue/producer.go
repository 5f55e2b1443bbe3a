package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"greenleaf/internal/models"
)

type EventType string

const (
	EventCreated   EventType = "lead.created"
	EventViewed    EventType = "lead.viewed"
	EventCompleted EventType = "lead.completed"
	EventPurged    EventType = "lead.purged"
)

// LeadEvent is published for every lifecycle change. Lead is nil for purges.
type LeadEvent struct {
	Type       EventType    `json:"type"`
	LeadID     int64        `json:"lead_id"`
	Lead       *models.Lead `json:"lead,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Producer struct {
	ch         Publisher
	exchange   string
	routingKey string
}

func NewProducer(ch Publisher, exchange, routingKey string) *Producer {
	return &Producer{ch: ch, exchange: exchange, routingKey: routingKey}
}

func (p *Producer) Publish(ctx context.Context, ev LeadEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(ev.Type),
			Timestamp:    ev.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
