package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// Event names emitted over the booking lifecycle.
const (
	EventSnapshotCreated = "snapshot.created"
	EventFareReviewed    = "fare.reviewed"
	EventBookingHeld     = "booking.held"
	EventPaymentCaptured = "payment.captured"
	EventBookingTicketed = "booking.ticketed"
	EventBookingFailed   = "booking.failed"
	EventBookingRefunded = "booking.refunded"
	EventBookingReleased = "booking.released"
)

type BookingEvent struct {
	Event      string         `json:"event"`
	BookingID  string         `json:"bookingId"`
	SnapshotID string         `json:"snapshotId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Publisher writes lifecycle events to kafka. Publishing is best effort:
// callers log failures but never roll back booking state over them.
type Publisher struct {
	bookingWriter      *kafka.Writer
	notificationWriter *kafka.Writer
	logger             *slog.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, func()) {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		}
	}

	p := &Publisher{
		bookingWriter:      newWriter(cfg.BookingEventsTopic),
		notificationWriter: newWriter(cfg.NotificationsTopic),
		logger:             logger,
	}
	cleanup := func() {
		_ = p.bookingWriter.Close()
		_ = p.notificationWriter.Close()
	}
	return p, cleanup
}

func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	return p.write(ctx, p.bookingWriter, ev)
}

// Notify additionally fans the event out on the notifications topic consumed
// by the delivery worker.
func (p *Publisher) Notify(ctx context.Context, ev BookingEvent) error {
	if err := p.write(ctx, p.bookingWriter, ev); err != nil {
		return err
	}
	return p.write(ctx, p.notificationWriter, ev)
}

func (p *Publisher) write(ctx context.Context, w *kafka.Writer, ev BookingEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking event")
	}

	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: value,
	})
	if err != nil {
		p.logger.Warn("failed to publish booking event",
			slog.String("event", ev.Event),
			slog.String("booking_id", ev.BookingID),
			slog.String("error", err.Error()),
		)
		return errs.Wrap(err, "failed to publish booking event")
	}
	return nil
}
