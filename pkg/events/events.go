package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects. Client-facing views subscribe to these to refresh slot and
// appointment lists without polling; delivery is best-effort and never gates
// the underlying state change.
const (
	// Appointment events
	AppointmentCreated  = "appointment.created"
	AppointmentCanceled = "appointment.canceled"
	AppointmentExpired  = "appointment.expired"

	// Slot events
	SlotOpened   = "slot.opened"
	SlotReleased = "slot.released"
	SlotRemoved  = "slot.removed"

	// Notification events
	NotifySent   = "notify.sent"
	NotifyFailed = "notify.failed"
)

// Event payloads
type AppointmentCreatedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      string    `json:"client_id"`
	ServiceID     string    `json:"service_id"`
	TimeSlotID    string    `json:"time_slot_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"created_at"`
}

type AppointmentCanceledEvent struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      string    `json:"client_id"`
	TimeSlotID    string    `json:"time_slot_id"`
	Reason        string    `json:"reason"`
	CanceledAt    time.Time `json:"canceled_at"`
}

type AppointmentExpiredEvent struct {
	AppointmentID string    `json:"appointment_id"`
	TimeSlotID    string    `json:"time_slot_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	ExpiredAt     time.Time `json:"expired_at"`
}

type SlotEvent struct {
	TimeSlotID string `json:"time_slot_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
}

type NotificationEvent struct {
	AppointmentID string `json:"appointment_id"`
	Type          string `json:"type"`
	Recipient     string `json:"recipient"`
	Error         string `json:"error,omitempty"`
}
