package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuely/internal/shared/apperr"
	"venuely/internal/shared/middleware"
	"venuely/internal/venues"
	"venuely/pkg/logger"

	"github.com/google/uuid"
)

// SignatureVerifier checks a gateway payment signature (to avoid circular
// dependency on the payments package)
type SignatureVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// TransactionRecord is the booking-side view of a gateway transaction
type TransactionRecord struct {
	BookingID        uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	Amount           float64
	Currency         string
	Status           string
	Source           string
}

// TransactionStore persists gateway transactions (implemented by payments)
type TransactionStore interface {
	RecordTransaction(ctx context.Context, record TransactionRecord) error
}

// PaymentGateway creates gateway orders for advance payments
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error)
}

// Notification types emitted by the booking lifecycle
const (
	NotifyBookingConfirmed = "BOOKING_CONFIRMED"
	NotifyPaymentReceived  = "PAYMENT_RECEIVED"
	NotifyBookingRejected  = "BOOKING_REJECTED"
	NotifyBookingCancelled = "BOOKING_CANCELLED"
)

type NotificationEvent struct {
	Type       string
	BookingID  uuid.UUID
	VenueID    uuid.UUID
	CustomerID uuid.UUID
	Email      string
	EventDate  time.Time
	Reason     string
}

// Notifier publishes booking lifecycle events. Calls are fire-and-forget:
// a publish failure never fails the booking operation.
type Notifier interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

// WebhookEvent is a gateway webhook payload after body signature
// verification by the payments layer
type WebhookEvent struct {
	Event            string
	GatewayOrderID   string
	GatewayPaymentID string
}

const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
)

// Service interface defines the contract for booking business logic
type Service interface {
	Create(ctx context.Context, customerID string, req CreateBookingRequest) (*CreateBookingResponse, error)
	VerifyPayment(ctx context.Context, customerID string, req VerifyPaymentRequest) (*BookingResponse, error)
	ReconcileWebhook(ctx context.Context, event WebhookEvent) error
	OwnerApprove(ctx context.Context, actorID, role, bookingID string) (*BookingResponse, error)
	OwnerReject(ctx context.Context, actorID, role, bookingID string, req RejectBookingRequest) (*BookingResponse, error)
	Cancel(ctx context.Context, actorID, role, bookingID string, req CancelBookingRequest) (*BookingResponse, error)

	GetBooking(ctx context.Context, actorID, role, bookingID string) (*BookingResponse, error)
	ListCustomerBookings(ctx context.Context, customerID string, req BookingListRequest) (*BookingListResponse, error)
	ListVenueBookings(ctx context.Context, actorID, role, venueID string, req BookingListRequest) (*BookingListResponse, error)
}

type service struct {
	repo      Repository
	venueRepo venues.Repository
	calendar  venues.CalendarService
	gateway   PaymentGateway
	verifier  SignatureVerifier
	txStore   TransactionStore
	notifier  Notifier
	locker    Locker
	logger    *logger.Logger
	currency  string
	keyID     string
}

func NewService(
	repo Repository,
	venueRepo venues.Repository,
	calendar venues.CalendarService,
	gateway PaymentGateway,
	verifier SignatureVerifier,
	txStore TransactionStore,
	notifier Notifier,
	locker Locker,
	log *logger.Logger,
	currency, keyID string,
) Service {
	return &service{
		repo:      repo,
		venueRepo: venueRepo,
		calendar:  calendar,
		gateway:   gateway,
		verifier:  verifier,
		txStore:   txStore,
		notifier:  notifier,
		locker:    locker,
		logger:    log,
		currency:  currency,
		keyID:     keyID,
	}
}

// Create checks availability and opens a gateway order, but writes nothing
// to the venue calendar. The date is only taken at payment verification.
func (s *service) Create(ctx context.Context, customerID string, req CreateBookingRequest) (*CreateBookingResponse, error) {
	customer, err := uuid.Parse(customerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer ID")
	}

	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return nil, apperr.Validation("invalid venue ID")
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, apperr.Validation("invalid event date")
	}
	eventDate = venues.DayUTC(eventDate)
	if eventDate.Before(venues.DayUTC(time.Now())) {
		return nil, apperr.Validation("event date must be today or later")
	}

	venue, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive {
		return nil, venues.ErrVenueInactive
	}

	available, err := s.calendar.IsAvailable(ctx, venueID, eventDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, venues.ErrDateUnavailable
	}

	booking := &Booking{
		ID:            uuid.New(),
		CustomerID:    customer,
		VenueID:       venueID,
		EventDate:     eventDate,
		EventType:     req.EventType,
		AttendeeName:  req.AttendeeName,
		AttendeePhone: req.AttendeePhone,
		AttendeeEmail: req.AttendeeEmail,
		IDProofRef:    req.IDProofRef,
		Amount:        venue.Price,
		AdvanceAmount: venue.Price / 2,
		Currency:      s.currency,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		HallApproval:  ApprovalPending,
	}

	orderID, err := s.gateway.CreateOrder(ctx, booking.AdvanceAmount, booking.Currency, booking.ID.String())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to create payment order", err)
	}
	booking.GatewayOrderID = orderID

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.LogBookingCreated(ctx, booking.ID.String(), venueID.String(), customerID)

	return &CreateBookingResponse{
		Booking: ToBookingResponse(booking),
		PaymentSession: PaymentSession{
			GatewayOrderID: orderID,
			Amount:         booking.AdvanceAmount,
			Currency:       booking.Currency,
			KeyID:          s.keyID,
		},
	}, nil
}

// VerifyPayment is the gate between a pending booking and a reserved date.
// It is idempotent: repeating a verified triple returns the settled booking.
func (s *service) VerifyPayment(ctx context.Context, customerID string, req VerifyPaymentRequest) (*BookingResponse, error) {
	customer, err := uuid.Parse(customerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer ID")
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperr.Validation("invalid booking ID")
	}

	release, err := s.locker.Acquire(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customer {
		return nil, apperr.Forbidden("booking belongs to another customer")
	}

	// Idempotent replay of an already verified triple
	if booking.IsPaymentCompleted() {
		if booking.GatewayPaymentID == req.GatewayPaymentID {
			resp := ToBookingResponse(booking)
			return &resp, nil
		}
		return nil, apperr.Conflict("payment already verified with a different payment ID")
	}

	if booking.IsCancelled() {
		return nil, apperr.Conflict("booking is cancelled")
	}
	if req.GatewayOrderID != booking.GatewayOrderID {
		return nil, apperr.Validation("gateway order ID does not match booking")
	}
	if !s.verifier.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		return nil, apperr.Forbidden("invalid payment signature")
	}

	settled, err := s.settlePayment(ctx, bookingID, req.GatewayPaymentID, req.GatewaySignature, "verify")
	if err != nil {
		return nil, err
	}

	resp := ToBookingResponse(settled)
	return &resp, nil
}

// settlePayment records the completed transaction, reserves the calendar
// date and transitions the booking. Ordering matters: the reservation is
// the atomic compare-and-set, and the booking transition afterwards runs
// under the row lock. A failure between the two is an inconsistency that
// is logged loudly, never silently repaired.
func (s *service) settlePayment(ctx context.Context, bookingID uuid.UUID, paymentID, signature, source string) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	record := TransactionRecord{
		BookingID:        booking.ID,
		GatewayOrderID:   booking.GatewayOrderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature,
		Amount:           booking.AdvanceAmount,
		Currency:         booking.Currency,
		Status:           "completed",
		Source:           source,
	}
	if err := s.txStore.RecordTransaction(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	reserveErr := s.calendar.Reserve(ctx, booking.VenueID, booking.EventDate, booking.ID)
	if reserveErr != nil && !errors.Is(reserveErr, venues.ErrDateUnavailable) {
		return nil, reserveErr
	}
	raceLost := errors.Is(reserveErr, venues.ErrDateUnavailable)

	var settled *Booking
	err = s.repo.Transaction(ctx, func(txRepo Repository) error {
		current, err := txRepo.GetBookingByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.IsPaymentCompleted() {
			// Another settle path won while we were reserving
			settled = current
			return nil
		}

		current.MarkPaymentCompleted(paymentID, signature)
		if raceLost {
			// The money arrived but the date was taken between availability
			// check and reservation. The booking exits refund-eligible.
			current.Cancel("date no longer available", current.CustomerID)
		}
		// Status stays pending until the owner approves; a paid booking is
		// not confirmed yet.

		if err := txRepo.UpdateBooking(ctx, current); err != nil {
			return err
		}
		settled = current
		return nil
	})
	if err != nil {
		if !raceLost {
			s.logger.LogInconsistency(ctx, bookingID.String(), booking.VenueID.String(),
				"calendar reserved but booking transition failed")
		}
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	if raceLost {
		s.publish(ctx, NotificationEvent{
			Type:       NotifyBookingCancelled,
			BookingID:  settled.ID,
			VenueID:    settled.VenueID,
			CustomerID: settled.CustomerID,
			Email:      settled.AttendeeEmail,
			EventDate:  settled.EventDate,
			Reason:     "date no longer available, advance payment eligible for refund",
		})
		return nil, ErrDateNoLongerAvailable
	}

	s.logger.LogPaymentVerified(ctx, settled.ID.String(), settled.GatewayOrderID)
	s.publish(ctx, NotificationEvent{
		Type:       NotifyPaymentReceived,
		BookingID:  settled.ID,
		VenueID:    settled.VenueID,
		CustomerID: settled.CustomerID,
		Email:      settled.AttendeeEmail,
		EventDate:  settled.EventDate,
	})

	return settled, nil
}

// ReconcileWebhook applies a gateway webhook. Unknown orders and already
// settled payments are silent no-ops so redelivery is harmless.
func (s *service) ReconcileWebhook(ctx context.Context, event WebhookEvent) error {
	booking, err := s.repo.GetBookingByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		return err
	}

	release, err := s.locker.Acquire(ctx, booking.ID)
	if err != nil {
		return err
	}
	defer release()

	switch event.Event {
	case WebhookPaymentCaptured:
		booking, err = s.repo.GetBookingByID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if booking.IsPaymentCompleted() || booking.IsCancelled() {
			return nil
		}
		// Body signature was already verified by the payments layer; the
		// per-payment signature travels only on the verify path
		_, err = s.settlePayment(ctx, booking.ID, event.GatewayPaymentID, "", "webhook")
		if errors.Is(err, ErrDateNoLongerAvailable) {
			return nil
		}
		return err

	case WebhookPaymentFailed:
		return s.repo.Transaction(ctx, func(txRepo Repository) error {
			current, err := txRepo.GetBookingByIDForUpdate(ctx, booking.ID)
			if err != nil {
				return err
			}
			if current.PaymentStatus != PaymentPending {
				return nil
			}
			current.MarkPaymentFailed()
			return txRepo.UpdateBooking(ctx, current)
		})

	default:
		return nil
	}
}

// OwnerApprove records the hall approval and confirms the booking. This is
// the only transition that moves a booking to confirmed.
func (s *service) OwnerApprove(ctx context.Context, actorID, role, bookingID string) (*BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.Validation("invalid booking ID")
	}

	var approved *Booking
	err = s.repo.Transaction(ctx, func(txRepo Repository) error {
		booking, err := txRepo.GetBookingByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireVenueOwner(ctx, booking.VenueID, actorID, role); err != nil {
			return err
		}
		if booking.IsCancelled() {
			return apperr.Conflict("booking is cancelled")
		}
		if booking.HallApproval.IsDecided() {
			return apperr.Conflict("booking approval is already %s", booking.HallApproval)
		}
		if !booking.IsPaymentCompleted() {
			return apperr.Conflict("booking cannot be approved before payment completes")
		}

		booking.HallApproval = ApprovalApproved
		booking.Status = StatusConfirmed
		if err := txRepo.UpdateBooking(ctx, booking); err != nil {
			return err
		}
		approved = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, NotificationEvent{
		Type:       NotifyBookingConfirmed,
		BookingID:  approved.ID,
		VenueID:    approved.VenueID,
		CustomerID: approved.CustomerID,
		Email:      approved.AttendeeEmail,
		EventDate:  approved.EventDate,
	})

	resp := ToBookingResponse(approved)
	return &resp, nil
}

// OwnerReject cancels the booking and frees the date. A completed advance
// payment is left completed for manual refund settlement.
func (s *service) OwnerReject(ctx context.Context, actorID, role, bookingID string, req RejectBookingRequest) (*BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.Validation("invalid booking ID")
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperr.Validation("invalid actor ID")
	}

	var rejected *Booking
	err = s.repo.Transaction(ctx, func(txRepo Repository) error {
		booking, err := txRepo.GetBookingByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireVenueOwner(ctx, booking.VenueID, actorID, role); err != nil {
			return err
		}
		if booking.IsCancelled() {
			return ErrAlreadyCancelled
		}
		if booking.HallApproval.IsDecided() {
			return apperr.Conflict("booking approval is already %s", booking.HallApproval)
		}

		booking.HallApproval = ApprovalRejected
		booking.RejectionReason = req.Reason
		booking.Cancel("rejected by venue owner: "+req.Reason, actor)
		if err := txRepo.UpdateBooking(ctx, booking); err != nil {
			return err
		}
		rejected = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.releaseDate(ctx, rejected)
	s.logger.LogBookingCancelled(ctx, rejected.ID.String(), rejected.VenueID.String(), actorID)
	s.publish(ctx, NotificationEvent{
		Type:       NotifyBookingRejected,
		BookingID:  rejected.ID,
		VenueID:    rejected.VenueID,
		CustomerID: rejected.CustomerID,
		Email:      rejected.AttendeeEmail,
		EventDate:  rejected.EventDate,
		Reason:     req.Reason,
	})

	resp := ToBookingResponse(rejected)
	return &resp, nil
}

func (s *service) Cancel(ctx context.Context, actorID, role, bookingID string, req CancelBookingRequest) (*BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.Validation("invalid booking ID")
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperr.Validation("invalid actor ID")
	}

	var cancelled *Booking
	err = s.repo.Transaction(ctx, func(txRepo Repository) error {
		booking, err := txRepo.GetBookingByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking.CustomerID != actor && role != middleware.RoleAdmin {
			return apperr.Forbidden("booking belongs to another customer")
		}
		if booking.IsCancelled() {
			return ErrAlreadyCancelled
		}
		if !booking.Status.CanBeCancelled() {
			return apperr.Conflict("booking with status %s cannot be cancelled", booking.Status)
		}

		reason := req.Reason
		if reason == "" {
			reason = "cancelled by customer"
		}
		booking.Cancel(reason, actor)
		if err := txRepo.UpdateBooking(ctx, booking); err != nil {
			return err
		}
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.releaseDate(ctx, cancelled)
	s.logger.LogBookingCancelled(ctx, cancelled.ID.String(), cancelled.VenueID.String(), actorID)
	s.publish(ctx, NotificationEvent{
		Type:       NotifyBookingCancelled,
		BookingID:  cancelled.ID,
		VenueID:    cancelled.VenueID,
		CustomerID: cancelled.CustomerID,
		Email:      cancelled.AttendeeEmail,
		EventDate:  cancelled.EventDate,
		Reason:     cancelled.CancellationReason,
	})

	resp := ToBookingResponse(cancelled)
	return &resp, nil
}

//  QUERIES

func (s *service) GetBooking(ctx context.Context, actorID, role, bookingID string) (*BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.Validation("invalid booking ID")
	}

	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookingAccess(ctx, booking, actorID, role); err != nil {
		return nil, err
	}

	resp := ToBookingResponse(booking)
	return &resp, nil
}

func (s *service) ListCustomerBookings(ctx context.Context, customerID string, req BookingListRequest) (*BookingListResponse, error) {
	customer, err := uuid.Parse(customerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer ID")
	}

	query, err := toListQuery(req)
	if err != nil {
		return nil, err
	}

	matched, total, err := s.repo.ListCustomerBookings(ctx, customer, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toListResponse(matched, total, query), nil
}

func (s *service) ListVenueBookings(ctx context.Context, actorID, role, venueID string, req BookingListRequest) (*BookingListResponse, error) {
	id, err := uuid.Parse(venueID)
	if err != nil {
		return nil, apperr.Validation("invalid venue ID")
	}

	if err := s.requireVenueOwner(ctx, id, actorID, role); err != nil {
		return nil, err
	}

	query, err := toListQuery(req)
	if err != nil {
		return nil, err
	}

	matched, total, err := s.repo.ListVenueBookings(ctx, id, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list venue bookings: %w", err)
	}

	return toListResponse(matched, total, query), nil
}

//  HELPERS

func (s *service) requireVenueOwner(ctx context.Context, venueID uuid.UUID, actorID, role string) error {
	if role == middleware.RoleAdmin {
		return nil
	}

	venue, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return err
	}

	actor, err := uuid.Parse(actorID)
	if err != nil || venue.OwnerID != actor {
		return apperr.Forbidden("you do not manage this venue")
	}
	return nil
}

func (s *service) requireBookingAccess(ctx context.Context, booking *Booking, actorID, role string) error {
	if role == middleware.RoleAdmin {
		return nil
	}

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return apperr.Forbidden("access denied")
	}
	if booking.CustomerID == actor {
		return nil
	}

	venue, err := s.venueRepo.GetVenueByID(ctx, booking.VenueID)
	if err == nil && venue.OwnerID == actor {
		return nil
	}
	return apperr.Forbidden("access denied")
}

// releaseDate frees the calendar entry after a cancellation. Release is a
// no-op when no date was ever reserved, so it runs unconditionally.
func (s *service) releaseDate(ctx context.Context, booking *Booking) {
	if err := s.calendar.Release(ctx, booking.VenueID, booking.ID); err != nil {
		s.logger.LogInconsistency(ctx, booking.ID.String(), booking.VenueID.String(),
			"failed to release booked date after cancellation: "+err.Error())
	}
}

func (s *service) publish(ctx context.Context, event NotificationEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish booking notification",
			"type", event.Type, "booking_id", event.BookingID.String(), "error", err)
	}
}

func toListQuery(req BookingListRequest) (BookingListQuery, error) {
	query := BookingListQuery{
		Status: Status(req.Status),
		Page:   req.Page,
		Limit:  req.Limit,
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return query, apperr.Validation("invalid 'from' date")
		}
		query.From = from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return query, apperr.Validation("invalid 'to' date")
		}
		query.To = to
	}

	return query, nil
}

func toListResponse(matched []Booking, total int64, query BookingListQuery) *BookingListResponse {
	responses := make([]BookingResponse, 0, len(matched))
	for i := range matched {
		responses = append(responses, ToBookingResponse(&matched[i]))
	}
	return &BookingListResponse{
		Bookings:   responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}
}
