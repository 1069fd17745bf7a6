package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"bingen-booking/internal/models"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

// Publish writes a single message to the given topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) publishBooking(topic string, booking models.Booking) error {
	msgBytes, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return p.Publish(topic, booking.Reference, msgBytes)
}

// PublishBookingCreated streams a booking creation event.
func (p *Producer) PublishBookingCreated(topic string, booking models.Booking) error {
	return p.publishBooking(topic, booking)
}

// PublishBookingConfirmed streams a booking confirmation event.
func (p *Producer) PublishBookingConfirmed(topic string, booking models.Booking) error {
	return p.publishBooking(topic, booking)
}

// PublishPaymentEvent streams a payment lifecycle event.
func (p *Producer) PublishPaymentEvent(topic string, event models.PaymentEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Publish(topic, event.PaymentID, msgBytes)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
