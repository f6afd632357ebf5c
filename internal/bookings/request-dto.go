package bookings

type CreateBookingRequest struct {
	VenueID       string `json:"venue_id" binding:"required,uuid"`
	EventDate     string `json:"event_date" binding:"required,datetime=2006-01-02"`
	EventType     string `json:"event_type" binding:"omitempty,max=100"`
	AttendeeName  string `json:"attendee_name" binding:"required,min=2,max=255"`
	AttendeePhone string `json:"attendee_phone" binding:"omitempty,min=7,max=20"`
	AttendeeEmail string `json:"attendee_email" binding:"required,email"`
	IDProofRef    string `json:"id_proof_ref" binding:"omitempty,max=100"`
}

type VerifyPaymentRequest struct {
	BookingID        string `json:"booking_id" binding:"required,uuid"`
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

type BookingListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
