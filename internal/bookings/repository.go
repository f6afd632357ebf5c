package bookings

import (
	"context"
	"errors"
	"time"

	"venuely/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors surfaced by the booking layer
var (
	ErrBookingNotFound       = apperr.New(apperr.KindNotFound, "booking not found")
	ErrAlreadyCancelled      = apperr.New(apperr.KindConflict, "booking is already cancelled")
	ErrDateNoLongerAvailable = apperr.New(apperr.KindConflict, "date is no longer available")
)

type BookingListQuery struct {
	Status Status
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByGatewayOrderID(ctx context.Context, orderID string) (*Booking, error)
	UpdateBooking(ctx context.Context, booking *Booking) error

	ListCustomerBookings(ctx context.Context, customerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	ListVenueBookings(ctx context.Context, venueID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)

	// Transaction runs fn against a repository bound to a DB transaction.
	// GetBookingByIDForUpdate only makes sense inside fn.
	Transaction(ctx context.Context, fn func(txRepo Repository) error) error
	GetBookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByGatewayOrderID(ctx context.Context, orderID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// GetBookingByIDForUpdate loads a booking holding a row lock. Call only from
// inside Transaction: the lock serializes verify, webhook, cancel and owner
// decisions touching the same booking.
func (r *repository) GetBookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateBooking(ctx context.Context, booking *Booking) error {
	booking.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) Transaction(ctx context.Context, fn func(txRepo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) ListCustomerBookings(ctx context.Context, customerID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Booking{}).Where("customer_id = ?", customerID), query)
}

func (r *repository) ListVenueBookings(ctx context.Context, venueID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Booking{}).Where("venue_id = ?", venueID), query)
}

func (r *repository) list(ctx context.Context, baseQuery *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if !query.From.IsZero() {
		baseQuery = baseQuery.Where("event_date >= ?", query.From)
	}
	if !query.To.IsZero() {
		baseQuery = baseQuery.Where("event_date <= ?", query.To)
	}

	var totalCount int64
	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var matched []Booking
	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&matched).Error
	if err != nil {
		return nil, 0, err
	}

	return matched, totalCount, nil
}
