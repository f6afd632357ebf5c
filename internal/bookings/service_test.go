package bookings_test

import (
	"context"
	"testing"
	"time"

	"venuely/internal/bookings"
	"venuely/internal/shared/apperr"
	"venuely/internal/shared/middleware"
	"venuely/internal/venues"
	"venuely/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) CreateBooking(ctx context.Context, booking *bookings.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetBookingByGatewayOrderID(ctx context.Context, orderID string) (*bookings.Booking, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateBooking(ctx context.Context, booking *bookings.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) ListCustomerBookings(ctx context.Context, customerID uuid.UUID, query bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	args := m.Called(ctx, customerID, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]bookings.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepo) ListVenueBookings(ctx context.Context, venueID uuid.UUID, query bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	args := m.Called(ctx, venueID, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]bookings.Booking), args.Get(1).(int64), args.Error(2)
}

// Transaction runs fn against the mock itself so expectations set on the
// mock also cover calls made inside the transaction body.
func (m *MockBookingRepo) Transaction(ctx context.Context, fn func(txRepo bookings.Repository) error) error {
	return fn(m)
}

func (m *MockBookingRepo) GetBookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

type MockVenueRepo struct {
	mock.Mock
}

func (m *MockVenueRepo) CreateVenue(ctx context.Context, venue *venues.Venue) error {
	args := m.Called(ctx, venue)
	return args.Error(0)
}

func (m *MockVenueRepo) GetVenueByID(ctx context.Context, id uuid.UUID) (*venues.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venues.Venue), args.Error(1)
}

func (m *MockVenueRepo) UpdateVenue(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockVenueRepo) ListVenues(ctx context.Context, query venues.ListQuery) ([]venues.Venue, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]venues.Venue), args.Get(1).(int64), args.Error(2)
}

func (m *MockVenueRepo) ListVenuesByOwner(ctx context.Context, ownerID uuid.UUID) ([]venues.Venue, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]venues.Venue), args.Error(1)
}

func (m *MockVenueRepo) VenuesMissingCoordinates(ctx context.Context, query venues.ListQuery, limit int) ([]venues.Venue, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]venues.Venue), args.Error(1)
}

func (m *MockVenueRepo) UpdateVenueCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	args := m.Called(ctx, id, latitude, longitude)
	return args.Error(0)
}

func (m *MockVenueRepo) GetAmenitiesBySlugs(ctx context.Context, slugs []string) ([]venues.Amenity, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]venues.Amenity), args.Error(1)
}

func (m *MockVenueRepo) CreateAmenity(ctx context.Context, amenity *venues.Amenity) error {
	args := m.Called(ctx, amenity)
	return args.Error(0)
}

func (m *MockVenueRepo) ReplaceVenueAmenities(ctx context.Context, venue *venues.Venue, amenities []venues.Amenity) error {
	args := m.Called(ctx, venue, amenities)
	return args.Error(0)
}

func (m *MockVenueRepo) GetCalendar(ctx context.Context, venueID uuid.UUID) (*venues.CalendarSnapshot, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venues.CalendarSnapshot), args.Error(1)
}

func (m *MockVenueRepo) ReserveDate(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID *uuid.UUID) error {
	args := m.Called(ctx, venueID, date, bookingID)
	return args.Error(0)
}

func (m *MockVenueRepo) ReleaseByBooking(ctx context.Context, venueID, bookingID uuid.UUID) error {
	args := m.Called(ctx, venueID, bookingID)
	return args.Error(0)
}

func (m *MockVenueRepo) InsertBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error) {
	args := m.Called(ctx, venueID, dates, reason, blockedBy)
	return args.Int(0), args.Error(1)
}

func (m *MockVenueRepo) DeleteBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time) error {
	args := m.Called(ctx, venueID, dates)
	return args.Error(0)
}

func (m *MockVenueRepo) MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error) {
	args := m.Called(ctx, venueID, dates)
	return args.Int(0), args.Error(1)
}

func (m *MockVenueRepo) ReplaceAvailableDates(ctx context.Context, venueID uuid.UUID, entries []venues.AvailableDate) error {
	args := m.Called(ctx, venueID, entries)
	return args.Error(0)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) IsAvailable(ctx context.Context, venueID uuid.UUID, date time.Time) (bool, error) {
	args := m.Called(ctx, venueID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockCalendar) Reserve(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID uuid.UUID) error {
	args := m.Called(ctx, venueID, date, bookingID)
	return args.Error(0)
}

func (m *MockCalendar) Release(ctx context.Context, venueID, bookingID uuid.UUID) error {
	args := m.Called(ctx, venueID, bookingID)
	return args.Error(0)
}

func (m *MockCalendar) Block(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error) {
	args := m.Called(ctx, venueID, dates, reason, blockedBy)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendar) Unblock(ctx context.Context, venueID uuid.UUID, dates []time.Time) error {
	args := m.Called(ctx, venueID, dates)
	return args.Error(0)
}

func (m *MockCalendar) MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error) {
	args := m.Called(ctx, venueID, dates)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendar) SetAvailableDates(ctx context.Context, venueID uuid.UUID, dates []venues.AvailableDateInput) error {
	args := m.Called(ctx, venueID, dates)
	return args.Error(0)
}

func (m *MockCalendar) ListAvailability(ctx context.Context, venueID uuid.UUID, from, to time.Time) ([]venues.CalendarDay, venues.AvailabilityMode, error) {
	args := m.Called(ctx, venueID, from, to)
	if args.Get(0) == nil {
		return nil, venues.OpenMode, args.Error(2)
	}
	return args.Get(0).([]venues.CalendarDay), args.Get(1).(venues.AvailabilityMode), args.Error(2)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	args := m.Called(ctx, amount, currency, receipt)
	return args.String(0), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

type MockTxStore struct {
	mock.Mock
}

func (m *MockTxStore) RecordTransaction(ctx context.Context, record bookings.TransactionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, event bookings.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, bookingID uuid.UUID) (func(), error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// Test fixture

type fixture struct {
	repo      *MockBookingRepo
	venueRepo *MockVenueRepo
	calendar  *MockCalendar
	gateway   *MockGateway
	verifier  *MockVerifier
	txStore   *MockTxStore
	notifier  *MockNotifier
	locker    *MockLocker
	svc       bookings.Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockBookingRepo),
		venueRepo: new(MockVenueRepo),
		calendar:  new(MockCalendar),
		gateway:   new(MockGateway),
		verifier:  new(MockVerifier),
		txStore:   new(MockTxStore),
		notifier:  new(MockNotifier),
		locker:    new(MockLocker),
	}
	f.svc = bookings.NewService(
		f.repo, f.venueRepo, f.calendar, f.gateway, f.verifier,
		f.txStore, f.notifier, f.locker, logger.New(), "INR", "key_test",
	)
	return f
}

func (f *fixture) lockAcquired(bookingID uuid.UUID) {
	f.locker.On("Acquire", mock.Anything, bookingID).Return(func() {}, nil)
}

func futureDate(offset int) time.Time {
	return venues.DayUTC(time.Now().AddDate(0, 0, offset))
}

func pendingBooking(customerID, venueID uuid.UUID) *bookings.Booking {
	return &bookings.Booking{
		ID:             uuid.New(),
		CustomerID:     customerID,
		VenueID:        venueID,
		EventDate:      futureDate(14),
		AttendeeName:   "Asha Rao",
		AttendeeEmail:  "asha@example.com",
		Amount:         80000,
		AdvanceAmount:  40000,
		Currency:       "INR",
		PaymentStatus:  bookings.PaymentPending,
		GatewayOrderID: "order_abc",
		Status:         bookings.StatusPending,
		HallApproval:   bookings.ApprovalPending,
	}
}

func activeVenue(ownerID uuid.UUID) *venues.Venue {
	return &venues.Venue{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     "Grand Palace Hall",
		City:     "Bengaluru",
		Capacity: 500,
		Price:    80000,
		IsActive: true,
	}
}

// Tests start here

func TestCreateBookingOpensPaymentSession(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	venue := activeVenue(uuid.New())
	eventDate := futureDate(14)

	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)
	f.calendar.On("IsAvailable", mock.Anything, venue.ID, eventDate).Return(true, nil)
	f.gateway.On("CreateOrder", mock.Anything, 40000.0, "INR", mock.Anything).Return("order_new", nil)
	f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		return b.Status == bookings.StatusPending &&
			b.PaymentStatus == bookings.PaymentPending &&
			b.AdvanceAmount == 40000 &&
			b.GatewayOrderID == "order_new"
	})).Return(nil)

	resp, err := f.svc.Create(context.Background(), customerID.String(), bookings.CreateBookingRequest{
		VenueID:       venue.ID.String(),
		EventDate:     eventDate.Format("2006-01-02"),
		AttendeeName:  "Asha Rao",
		AttendeeEmail: "asha@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "order_new", resp.PaymentSession.GatewayOrderID)
	assert.Equal(t, 40000.0, resp.PaymentSession.Amount)
	assert.Equal(t, "key_test", resp.PaymentSession.KeyID)
	// Creation never touches the calendar; the date is taken at verification
	f.calendar.AssertNotCalled(t, "Reserve")
	f.repo.AssertExpectations(t)
}

func TestCreateBookingRejectsUnavailableDate(t *testing.T) {
	f := newFixture()
	venue := activeVenue(uuid.New())
	eventDate := futureDate(14)

	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)
	f.calendar.On("IsAvailable", mock.Anything, venue.ID, eventDate).Return(false, nil)

	_, err := f.svc.Create(context.Background(), uuid.New().String(), bookings.CreateBookingRequest{
		VenueID:       venue.ID.String(),
		EventDate:     eventDate.Format("2006-01-02"),
		AttendeeName:  "Asha Rao",
		AttendeeEmail: "asha@example.com",
	})

	assert.ErrorIs(t, err, venues.ErrDateUnavailable)
	f.gateway.AssertNotCalled(t, "CreateOrder")
}

func TestCreateBookingRejectsPastDate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), uuid.New().String(), bookings.CreateBookingRequest{
		VenueID:       uuid.New().String(),
		EventDate:     futureDate(-1).Format("2006-01-02"),
		AttendeeName:  "Asha Rao",
		AttendeeEmail: "asha@example.com",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	f.venueRepo.AssertNotCalled(t, "GetVenueByID")
}

func TestCreateBookingRejectsInactiveVenue(t *testing.T) {
	f := newFixture()
	venue := activeVenue(uuid.New())
	venue.IsActive = false

	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)

	_, err := f.svc.Create(context.Background(), uuid.New().String(), bookings.CreateBookingRequest{
		VenueID:       venue.ID.String(),
		EventDate:     futureDate(14).Format("2006-01-02"),
		AttendeeName:  "Asha Rao",
		AttendeeEmail: "asha@example.com",
	})

	assert.ErrorIs(t, err, venues.ErrVenueInactive)
	f.calendar.AssertNotCalled(t, "IsAvailable")
}

func TestVerifyPaymentCompletesPaymentButNotApproval(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)
	f.verifier.On("VerifyPaymentSignature", "order_abc", "pay_1", "sig_valid").Return(true)
	f.txStore.On("RecordTransaction", mock.Anything, mock.MatchedBy(func(r bookings.TransactionRecord) bool {
		return r.BookingID == booking.ID && r.Status == "completed" && r.Source == "verify"
	})).Return(nil)
	f.calendar.On("Reserve", mock.Anything, booking.VenueID, booking.EventDate, booking.ID).Return(nil)
	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		// A paid booking still awaits the owner; only OwnerApprove confirms
		return b.Status == bookings.StatusPending &&
			b.PaymentStatus == bookings.PaymentCompleted &&
			b.HallApproval == bookings.ApprovalPending
	})).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e bookings.NotificationEvent) bool {
		return e.Type == bookings.NotifyPaymentReceived && e.BookingID == booking.ID
	})).Return(nil)

	resp, err := f.svc.VerifyPayment(context.Background(), customerID.String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_valid",
	})

	assert.NoError(t, err)
	assert.Equal(t, bookings.StatusPending.String(), resp.Status)
	assert.Equal(t, bookings.ApprovalPending.String(), resp.HallApproval)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestVerifyPaymentIsIdempotent(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())
	booking.MarkPaymentCompleted("pay_1", "sig_valid")

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)

	resp, err := f.svc.VerifyPayment(context.Background(), customerID.String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_valid",
	})

	// Replaying the settled triple returns the booking without re-settling
	assert.NoError(t, err)
	assert.Equal(t, bookings.PaymentCompleted.String(), resp.Payment.Status)
	f.verifier.AssertNotCalled(t, "VerifyPaymentSignature")
	f.txStore.AssertNotCalled(t, "RecordTransaction")
	f.calendar.AssertNotCalled(t, "Reserve")
}

func TestVerifyPaymentRejectsConflictingReplay(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())
	booking.MarkPaymentCompleted("pay_1", "sig_valid")

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)

	_, err := f.svc.VerifyPayment(context.Background(), customerID.String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_other",
		GatewaySignature: "sig_other",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestVerifyPaymentRejectsInvalidSignature(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)
	f.verifier.On("VerifyPaymentSignature", "order_abc", "pay_1", "sig_forged").Return(false)

	_, err := f.svc.VerifyPayment(context.Background(), customerID.String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_forged",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	f.txStore.AssertNotCalled(t, "RecordTransaction")
	f.calendar.AssertNotCalled(t, "Reserve")
}

func TestVerifyPaymentRejectsForeignBooking(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)

	_, err := f.svc.VerifyPayment(context.Background(), uuid.New().String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_valid",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestVerifyPaymentLostRaceCancelsAndKeepsPayment(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())

	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)
	f.verifier.On("VerifyPaymentSignature", "order_abc", "pay_1", "sig_valid").Return(true)
	f.txStore.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)
	// Another booking took the date between the availability check and now
	f.calendar.On("Reserve", mock.Anything, booking.VenueID, booking.EventDate, booking.ID).
		Return(venues.ErrDateUnavailable)
	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		return b.Status == bookings.StatusCancelled && b.PaymentStatus == bookings.PaymentCompleted
	})).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e bookings.NotificationEvent) bool {
		return e.Type == bookings.NotifyBookingCancelled && e.Reason != ""
	})).Return(nil)

	_, err := f.svc.VerifyPayment(context.Background(), customerID.String(), bookings.VerifyPaymentRequest{
		BookingID:        booking.ID.String(),
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_valid",
	})

	assert.ErrorIs(t, err, bookings.ErrDateNoLongerAvailable)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestReconcileWebhookUnknownOrderIsNoOp(t *testing.T) {
	f := newFixture()

	f.repo.On("GetBookingByGatewayOrderID", mock.Anything, "order_unknown").
		Return(nil, bookings.ErrBookingNotFound)

	err := f.svc.ReconcileWebhook(context.Background(), bookings.WebhookEvent{
		Event:          bookings.WebhookPaymentCaptured,
		GatewayOrderID: "order_unknown",
	})

	assert.NoError(t, err)
	f.locker.AssertNotCalled(t, "Acquire")
}

func TestReconcileWebhookSettledPaymentIsNoOp(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())
	booking.MarkPaymentCompleted("pay_1", "sig_valid")

	f.repo.On("GetBookingByGatewayOrderID", mock.Anything, "order_abc").Return(booking, nil)
	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)

	err := f.svc.ReconcileWebhook(context.Background(), bookings.WebhookEvent{
		Event:            bookings.WebhookPaymentCaptured,
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
	})

	assert.NoError(t, err)
	f.txStore.AssertNotCalled(t, "RecordTransaction")
	f.calendar.AssertNotCalled(t, "Reserve")
}

func TestReconcileWebhookCapturedSettlesPending(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())

	f.repo.On("GetBookingByGatewayOrderID", mock.Anything, "order_abc").Return(booking, nil)
	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByID", mock.Anything, booking.ID).Return(booking, nil)
	f.txStore.On("RecordTransaction", mock.Anything, mock.MatchedBy(func(r bookings.TransactionRecord) bool {
		return r.Source == "webhook"
	})).Return(nil)
	f.calendar.On("Reserve", mock.Anything, booking.VenueID, booking.EventDate, booking.ID).Return(nil)
	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.ReconcileWebhook(context.Background(), bookings.WebhookEvent{
		Event:            bookings.WebhookPaymentCaptured,
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_1",
	})

	assert.NoError(t, err)
	assert.Equal(t, bookings.PaymentCompleted, booking.PaymentStatus)
	assert.Equal(t, bookings.StatusPending, booking.Status)
	f.txStore.AssertExpectations(t)
}

func TestReconcileWebhookFailedMarksPaymentFailed(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())

	f.repo.On("GetBookingByGatewayOrderID", mock.Anything, "order_abc").Return(booking, nil)
	f.lockAcquired(booking.ID)
	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		return b.PaymentStatus == bookings.PaymentFailed
	})).Return(nil)

	err := f.svc.ReconcileWebhook(context.Background(), bookings.WebhookEvent{
		Event:          bookings.WebhookPaymentFailed,
		GatewayOrderID: "order_abc",
	})

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestOwnerApproveRequiresCompletedPayment(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	venue := activeVenue(ownerID)
	booking := pendingBooking(uuid.New(), venue.ID)

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)

	_, err := f.svc.OwnerApprove(context.Background(), ownerID.String(), middleware.RoleOwner, booking.ID.String())

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	f.repo.AssertNotCalled(t, "UpdateBooking")
}

func TestOwnerApprovePublishesConfirmation(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	venue := activeVenue(ownerID)
	booking := pendingBooking(uuid.New(), venue.ID)
	booking.MarkPaymentCompleted("pay_1", "sig_valid")

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		return b.HallApproval == bookings.ApprovalApproved &&
			b.Status == bookings.StatusConfirmed
	})).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e bookings.NotificationEvent) bool {
		return e.Type == bookings.NotifyBookingConfirmed
	})).Return(nil)

	resp, err := f.svc.OwnerApprove(context.Background(), ownerID.String(), middleware.RoleOwner, booking.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, bookings.ApprovalApproved.String(), resp.HallApproval)
	assert.Equal(t, bookings.StatusConfirmed.String(), resp.Status)
	f.notifier.AssertExpectations(t)
}

func TestOwnerApproveRejectsForeignVenue(t *testing.T) {
	f := newFixture()
	venue := activeVenue(uuid.New())
	booking := pendingBooking(uuid.New(), venue.ID)

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)

	_, err := f.svc.OwnerApprove(context.Background(), uuid.New().String(), middleware.RoleOwner, booking.ID.String())

	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestOwnerRejectCancelsAndReleasesDate(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	venue := activeVenue(ownerID)
	booking := pendingBooking(uuid.New(), venue.ID)
	booking.MarkPaymentCompleted("pay_1", "sig_valid")

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		// The completed advance payment stays completed for manual refund
		return b.HallApproval == bookings.ApprovalRejected &&
			b.Status == bookings.StatusCancelled &&
			b.PaymentStatus == bookings.PaymentCompleted
	})).Return(nil)
	f.calendar.On("Release", mock.Anything, venue.ID, booking.ID).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e bookings.NotificationEvent) bool {
		return e.Type == bookings.NotifyBookingRejected && e.Reason == "double booked offline"
	})).Return(nil)

	resp, err := f.svc.OwnerReject(context.Background(), ownerID.String(), middleware.RoleOwner, booking.ID.String(),
		bookings.RejectBookingRequest{Reason: "double booked offline"})

	assert.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled.String(), resp.Status)
	f.calendar.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestOwnerRejectTwiceReturnsConflict(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	venue := activeVenue(ownerID)
	booking := pendingBooking(uuid.New(), venue.ID)
	booking.HallApproval = bookings.ApprovalRejected
	booking.Cancel("rejected by venue owner: double booked offline", ownerID)

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)

	_, err := f.svc.OwnerReject(context.Background(), ownerID.String(), middleware.RoleOwner, booking.ID.String(),
		bookings.RejectBookingRequest{Reason: "still double booked"})

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	f.repo.AssertNotCalled(t, "UpdateBooking")
	f.calendar.AssertNotCalled(t, "Release")
}

func TestOwnerRejectAfterApprovalReturnsConflict(t *testing.T) {
	f := newFixture()
	ownerID := uuid.New()
	venue := activeVenue(ownerID)
	booking := pendingBooking(uuid.New(), venue.ID)
	booking.MarkPaymentCompleted("pay_1", "sig_valid")
	booking.HallApproval = bookings.ApprovalApproved
	booking.Status = bookings.StatusConfirmed

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.venueRepo.On("GetVenueByID", mock.Anything, venue.ID).Return(venue, nil)

	_, err := f.svc.OwnerReject(context.Background(), ownerID.String(), middleware.RoleOwner, booking.ID.String(),
		bookings.RejectBookingRequest{Reason: "changed my mind"})

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	f.repo.AssertNotCalled(t, "UpdateBooking")
	f.calendar.AssertNotCalled(t, "Release")
}

func TestCancelReleasesDate(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())
	booking.MarkPaymentCompleted("pay_1", "sig_valid")
	booking.HallApproval = bookings.ApprovalApproved
	booking.Status = bookings.StatusConfirmed

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(b *bookings.Booking) bool {
		return b.Status == bookings.StatusCancelled && b.CancellationReason == "venue changed"
	})).Return(nil)
	f.calendar.On("Release", mock.Anything, booking.VenueID, booking.ID).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(e bookings.NotificationEvent) bool {
		return e.Type == bookings.NotifyBookingCancelled
	})).Return(nil)

	resp, err := f.svc.Cancel(context.Background(), customerID.String(), middleware.RoleCustomer, booking.ID.String(),
		bookings.CancelBookingRequest{Reason: "venue changed"})

	assert.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled.String(), resp.Status)
	f.calendar.AssertExpectations(t)
}

func TestCancelTwiceReturnsAlreadyCancelled(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	booking := pendingBooking(customerID, uuid.New())
	booking.Cancel("first cancellation", customerID)

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)

	_, err := f.svc.Cancel(context.Background(), customerID.String(), middleware.RoleCustomer, booking.ID.String(),
		bookings.CancelBookingRequest{})

	assert.ErrorIs(t, err, bookings.ErrAlreadyCancelled)
	f.repo.AssertNotCalled(t, "UpdateBooking")
	f.calendar.AssertNotCalled(t, "Release")
}

func TestCancelRejectsForeignCustomer(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)

	_, err := f.svc.Cancel(context.Background(), uuid.New().String(), middleware.RoleCustomer, booking.ID.String(),
		bookings.CancelBookingRequest{})

	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestCancelAllowsAdminOverride(t *testing.T) {
	f := newFixture()
	booking := pendingBooking(uuid.New(), uuid.New())

	f.repo.On("GetBookingByIDForUpdate", mock.Anything, booking.ID).Return(booking, nil)
	f.repo.On("UpdateBooking", mock.Anything, mock.Anything).Return(nil)
	f.calendar.On("Release", mock.Anything, booking.VenueID, booking.ID).Return(nil)
	f.notifier.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Cancel(context.Background(), uuid.New().String(), middleware.RoleAdmin, booking.ID.String(),
		bookings.CancelBookingRequest{Reason: "policy violation"})

	assert.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled.String(), resp.Status)
}
