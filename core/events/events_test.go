package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestInlinePublisher(t *testing.T) {
	var got []ProductChanged
	p := InlinePublisher{Handler: func(_ context.Context, ev ProductChanged) error {
		got = append(got, ev)
		return nil
	}}
	if err := p.Publish(context.Background(), ProductChanged{Action: ActionUpsert, ProductID: "p1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "p1" {
		t.Errorf("handler saw %v", got)
	}
	if err := (InlinePublisher{}).Publish(context.Background(), ProductChanged{}); err != nil {
		t.Errorf("nil handler: %v", err)
	}
	if err := (NopPublisher{}).Publish(context.Background(), ProductChanged{}); err != nil {
		t.Errorf("NopPublisher: %v", err)
	}
}

func TestNewPublishing(t *testing.T) {
	msg, err := newPublishing(ProductChanged{Action: ActionDelete, ProductID: "p9"})
	if err != nil {
		t.Fatalf("newPublishing: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("publishing = %+v", msg)
	}
	if msg.Headers["event-type"] != RoutingKeyProductChanged {
		t.Errorf("event-type header = %v", msg.Headers["event-type"])
	}
	var ev ProductChanged
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		t.Fatalf("body: %v", err)
	}
	if ev.Action != ActionDelete || ev.ProductID != "p9" || ev.At.IsZero() {
		t.Errorf("decoded = %+v", ev)
	}
}

func TestHandleDelivery(t *testing.T) {
	ctx := context.Background()
	ok := func(context.Context, ProductChanged) error { return nil }
	fail := func(context.Context, ProductChanged) error { return errors.New("index down") }

	if _, err := handleDelivery(ctx, []byte("{not json"), false, ok); err == nil {
		t.Error("malformed body: want error")
	}
	if requeue, err := handleDelivery(ctx, []byte(`{"action":"upsert"}`), false, ok); err == nil || requeue {
		t.Errorf("missing id: requeue=%v err=%v", requeue, err)
	}
	body := []byte(`{"action":"upsert","productId":"p1"}`)
	if requeue, err := handleDelivery(ctx, body, false, ok); err != nil || requeue {
		t.Errorf("ok: requeue=%v err=%v", requeue, err)
	}
	if requeue, err := handleDelivery(ctx, body, false, fail); err == nil || !requeue {
		t.Errorf("first failure: requeue=%v err=%v, want requeue", requeue, err)
	}
	if requeue, err := handleDelivery(ctx, body, true, fail); err == nil || requeue {
		t.Errorf("redelivered failure: requeue=%v err=%v, want drop", requeue, err)
	}
}

func TestDialAMQP_Validation(t *testing.T) {
	if _, err := DialAMQP(AMQPConfig{}, nil); err == nil {
		t.Error("empty url: want error")
	}
	if _, err := DialAMQP(AMQPConfig{URL: "amqp://localhost"}, nil); err == nil {
		t.Error("empty exchange: want error")
	}
}
