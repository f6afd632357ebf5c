package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"venuely/internal/bookings"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// EmailNotification is the Kafka message carrying one booking lifecycle
// email. Partitioned by recipient so one customer's mails stay ordered.
type EmailNotification struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`

	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientEmail string    `json:"recipient_email"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	BookingID uuid.UUID `json:"booking_id"`
	VenueID   uuid.UUID `json:"venue_id"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

// FromBookingEvent builds the email message for one lifecycle event
func FromBookingEvent(event bookings.NotificationEvent) *EmailNotification {
	now := time.Now()
	notification := &EmailNotification{
		ID:             uuid.New(),
		Type:           event.Type,
		RecipientID:    event.CustomerID,
		RecipientEmail: event.Email,
		BookingID:      event.BookingID,
		VenueID:        event.VenueID,
		Status:         NotificationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		TemplateData: map[string]interface{}{
			"booking_id": event.BookingID.String(),
			"event_date": event.EventDate.Format("2006-01-02"),
			"reason":     event.Reason,
		},
	}
	notification.Subject = subjectFor(event)
	return notification
}

func subjectFor(event bookings.NotificationEvent) string {
	date := event.EventDate.Format("Jan 2, 2006")
	switch event.Type {
	case bookings.NotifyPaymentReceived:
		return fmt.Sprintf("Payment received for your booking on %s", date)
	case bookings.NotifyBookingConfirmed:
		return fmt.Sprintf("Your venue booking on %s is confirmed", date)
	case bookings.NotifyBookingRejected:
		return fmt.Sprintf("Your venue booking on %s was declined", date)
	case bookings.NotifyBookingCancelled:
		return fmt.Sprintf("Your venue booking on %s was cancelled", date)
	default:
		return "Update on your venue booking"
	}
}

func (n *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all of one recipient's notifications to the same
// partition
func (n *EmailNotification) GetPartitionKey() string {
	return n.RecipientEmail
}

func (n *EmailNotification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

func (n *EmailNotification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	errorStr := err.Error()
	n.LastError = &errorStr
	n.UpdatedAt = time.Now()
}
