package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking defines the main booking structure. Rows are never hard-deleted:
// cancellation is a status transition so the audit trail survives.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	VenueID    uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`
	EventDate  time.Time `gorm:"type:date;not null;index" json:"event_date"`
	EventType  string    `gorm:"type:varchar(100)" json:"event_type"`

	AttendeeName  string `gorm:"type:varchar(255);not null" json:"attendee_name"`
	AttendeePhone string `gorm:"type:varchar(20)" json:"attendee_phone"`
	AttendeeEmail string `gorm:"type:varchar(255);not null" json:"attendee_email"`
	IDProofRef    string `gorm:"type:varchar(100)" json:"id_proof_ref"`

	// Payment sub-record. Advance is half the venue price at booking time.
	Amount           float64       `gorm:"not null" json:"amount"`
	AdvanceAmount    float64       `gorm:"not null" json:"advance_amount"`
	Currency         string        `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"payment_status"`
	GatewayOrderID   string        `gorm:"type:varchar(100);index" json:"gateway_order_id"`
	GatewayPaymentID string        `gorm:"type:varchar(100)" json:"gateway_payment_id,omitempty"`
	GatewaySignature string        `gorm:"type:varchar(255)" json:"-"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`

	Status       Status         `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	HallApproval ApprovalStatus `gorm:"type:varchar(20);default:'PENDING'" json:"hall_approval"`

	RejectionReason    string     `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	CancellationReason string     `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Helper methods for booking management

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsPaymentCompleted() bool {
	return b.PaymentStatus == PaymentCompleted
}

func (b *Booking) Cancel(reason string, actorID uuid.UUID) {
	now := time.Now()
	b.Status = StatusCancelled
	b.CancellationReason = reason
	b.CancelledBy = &actorID
	b.CancelledAt = &now
	b.UpdatedAt = now
}

func (b *Booking) MarkPaymentCompleted(paymentID, signature string) {
	now := time.Now()
	b.PaymentStatus = PaymentCompleted
	b.GatewayPaymentID = paymentID
	b.GatewaySignature = signature
	b.PaidAt = &now
	b.UpdatedAt = now
}

func (b *Booking) MarkPaymentFailed() {
	b.PaymentStatus = PaymentFailed
	b.UpdatedAt = time.Now()
}
