package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig describes the topic exchange and the indexer queue bound to it.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// AMQP publishes and consumes ProductChanged events on a durable topic exchange.
type AMQP struct {
	cfg  AMQPConfig
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
}

// DialAMQP connects and declares the exchange.
func DialAMQP(cfg AMQPConfig, log *slog.Logger) (*AMQP, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp: url is required")
	}
	if cfg.Exchange == "" {
		return nil, errors.New("amqp: exchange is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp: failed to dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: failed to open a channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: failed to declare exchange '%s': %w", cfg.Exchange, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &AMQP{cfg: cfg, conn: conn, ch: ch, log: log.With("component", "amqp")}, nil
}

func (a *AMQP) Publish(ctx context.Context, ev ProductChanged) error {
	if a.ch == nil || a.conn == nil || a.conn.IsClosed() {
		return errors.New("amqp: not connected")
	}
	msg, err := newPublishing(ev)
	if err != nil {
		return err
	}
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.ch.PublishWithContext(publishCtx, a.cfg.Exchange, RoutingKeyProductChanged, false, false, msg); err != nil {
		return fmt.Errorf("amqp: failed to publish: %w", err)
	}
	a.log.Debug("published event", "action", ev.Action, "product_id", ev.ProductID)
	return nil
}

// Consume binds the queue and runs h for each delivery until ctx is done or
// the channel closes. Malformed messages are dropped; handler errors requeue once.
func (a *AMQP) Consume(ctx context.Context, h Handler) error {
	q, err := a.ch.QueueDeclare(a.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp: failed to declare queue '%s': %w", a.cfg.Queue, err)
	}
	if err := a.ch.QueueBind(q.Name, RoutingKeyProductChanged, a.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("amqp: failed to bind queue: %w", err)
	}
	if err := a.ch.Qos(16, 0, false); err != nil {
		return fmt.Errorf("amqp: failed to set qos: %w", err)
	}
	deliveries, err := a.ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp: failed to consume: %w", err)
	}

	a.log.Info("consumer started", "queue", q.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp: delivery channel closed")
			}
			requeue, err := handleDelivery(ctx, d.Body, d.Redelivered, h)
			if err != nil {
				a.log.Error("event handling failed", "error", err, "requeue", requeue)
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (a *AMQP) Close() error {
	var firstErr error
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			firstErr = err
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newPublishing(ev ProductChanged) (amqp.Publishing, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("amqp: marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.At,
		Headers: amqp.Table{
			"event-type":    RoutingKeyProductChanged,
			"event-version": "1.0.0",
		},
	}, nil
}

// handleDelivery decodes body and runs h. requeue is true only for a first
// delivery whose handler failed.
func handleDelivery(ctx context.Context, body []byte, redelivered bool, h Handler) (requeue bool, err error) {
	var ev ProductChanged
	if err := json.Unmarshal(body, &ev); err != nil {
		return false, fmt.Errorf("decode event: %w", err)
	}
	if ev.ProductID == "" {
		return false, errors.New("decode event: missing productId")
	}
	if err := h(ctx, ev); err != nil {
		return !redelivered, err
	}
	return false, nil
}
