// Package events carries catalog change notifications from product mutations
// to the search indexer, either in process or over RabbitMQ.
package events

import (
	"context"
	"time"
)

// RoutingKeyProductChanged is the AMQP routing key and event-type header.
const RoutingKeyProductChanged = "product.changed"

type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// ProductChanged is emitted after a product is created, updated, deleted or imported.
type ProductChanged struct {
	Action    Action    `json:"action"`
	ProductID string    `json:"productId"`
	At        time.Time `json:"at"`
}

type Handler func(ctx context.Context, ev ProductChanged) error

type Publisher interface {
	Publish(ctx context.Context, ev ProductChanged) error
}

// InlinePublisher runs the handler synchronously. Used when no broker is configured.
type InlinePublisher struct {
	Handler Handler
}

func (p InlinePublisher) Publish(ctx context.Context, ev ProductChanged) error {
	if p.Handler == nil {
		return nil
	}
	return p.Handler(ctx, ev)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductChanged) error { return nil }
