package bookings

import (
	"time"

	"github.com/google/uuid"
)

type PaymentInfo struct {
	Amount           float64    `json:"amount"`
	AdvanceAmount    float64    `json:"advance_amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	GatewayOrderID   string     `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

type BookingResponse struct {
	ID                 uuid.UUID   `json:"id"`
	CustomerID         uuid.UUID   `json:"customer_id"`
	VenueID            uuid.UUID   `json:"venue_id"`
	EventDate          time.Time   `json:"event_date"`
	EventType          string      `json:"event_type,omitempty"`
	AttendeeName       string      `json:"attendee_name"`
	AttendeePhone      string      `json:"attendee_phone,omitempty"`
	AttendeeEmail      string      `json:"attendee_email"`
	Status             string      `json:"status"`
	HallApproval       string      `json:"hall_approval"`
	Payment            PaymentInfo `json:"payment"`
	RejectionReason    string      `json:"rejection_reason,omitempty"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		VenueID:       b.VenueID,
		EventDate:     b.EventDate,
		EventType:     b.EventType,
		AttendeeName:  b.AttendeeName,
		AttendeePhone: b.AttendeePhone,
		AttendeeEmail: b.AttendeeEmail,
		Status:        b.Status.String(),
		HallApproval:  b.HallApproval.String(),
		Payment: PaymentInfo{
			Amount:           b.Amount,
			AdvanceAmount:    b.AdvanceAmount,
			Currency:         b.Currency,
			Status:           b.PaymentStatus.String(),
			GatewayOrderID:   b.GatewayOrderID,
			GatewayPaymentID: b.GatewayPaymentID,
			PaidAt:           b.PaidAt,
		},
		RejectionReason:    b.RejectionReason,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
	}
}

// PaymentSession carries what a checkout client needs to open the gateway
// widget for the advance payment.
type PaymentSession struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"key_id"`
}

type CreateBookingResponse struct {
	Booking        BookingResponse `json:"booking"`
	PaymentSession PaymentSession  `json:"payment_session"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}
