package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"storefront/internal/domain"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.msgs = append(s.msgs, msgs...)
	return s.err
}

func (s *stubWriter) Close() error { return nil }

func TestPublishOrderPlaced(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)

	w := &stubWriter{}
	p := &Producer{writer: w, topic: "orders"}
	event := domain.OrderPlacedEvent{
		OrderID:       "o-1",
		OrderNumber:   "#42",
		PaymentMethod: domain.PaymentInvoice,
		ItemCount:     2,
		TotalCents:    54800,
		Currency:      "NOK",
		Timestamp:     time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.PublishOrderPlaced(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "o-1", string(msg.Key))
	assert.NotEmpty(t, NewMessageCarrier(&msg).Get("traceparent"))

	var got domain.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)
}

func TestPublishOrderPlaced_WriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{writer: &stubWriter{err: boom}, topic: "orders"}

	err := p.PublishOrderPlaced(context.Background(), domain.OrderPlacedEvent{OrderID: "o-1"})
	assert.ErrorIs(t, err, boom)
}

func TestMessageCarrier_SetOverwrites(t *testing.T) {
	var msg kafka.Message
	c := NewMessageCarrier(&msg)
	c.Set("a", "1")
	c.Set("a", "2")
	c.Set("b", "3")

	assert.Equal(t, "2", c.Get("a"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Empty(t, c.Get("missing"))
}
