package venues

import (
	"context"
	"errors"
	"strings"
	"time"

	"venuely/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors surfaced by the venue and calendar layer
var (
	ErrVenueNotFound   = apperr.New(apperr.KindNotFound, "venue not found")
	ErrVenueInactive   = apperr.New(apperr.KindConflict, "venue is not accepting bookings")
	ErrDateUnavailable = apperr.New(apperr.KindConflict, "date is not available")
)

type Repository interface {
	// Venue operations
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ListVenues(ctx context.Context, query ListQuery) ([]Venue, int64, error)
	ListVenuesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Venue, error)
	VenuesMissingCoordinates(ctx context.Context, query ListQuery, limit int) ([]Venue, error)
	UpdateVenueCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error

	// Amenity operations
	GetAmenitiesBySlugs(ctx context.Context, slugs []string) ([]Amenity, error)
	CreateAmenity(ctx context.Context, amenity *Amenity) error
	ReplaceVenueAmenities(ctx context.Context, venue *Venue, amenities []Amenity) error

	// Calendar reads
	GetCalendar(ctx context.Context, venueID uuid.UUID) (*CalendarSnapshot, error)

	// Calendar writes. All per-venue mutations take a FOR UPDATE lock on
	// the venue row so writes for a single venue serialize.
	ReserveDate(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID *uuid.UUID) error
	ReleaseByBooking(ctx context.Context, venueID, bookingID uuid.UUID) error
	InsertBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error)
	DeleteBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time) error
	MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error)
	ReplaceAvailableDates(ctx context.Context, venueID uuid.UUID, entries []AvailableDate) error
}

// ListQuery carries attribute filters for venue listing/search. Limit == 0
// disables pagination (the geo pipeline paginates after distance filtering).
type ListQuery struct {
	Search      string
	City        string
	EventType   string
	PriceMin    float64
	PriceMax    float64
	CapacityMin int
	CapacityMax int
	Amenities   []string
	ActiveOnly  bool
	SortBy      string
	Page        int
	Limit       int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateVenue(ctx context.Context, venue *Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *repository) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).
		Preload("Amenities").
		Where("id = ?", id).
		First(&venue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (r *repository) UpdateVenue(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&Venue{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVenueNotFound
	}
	return nil
}

func (r *repository) ListVenues(ctx context.Context, query ListQuery) ([]Venue, int64, error) {
	var matched []Venue
	var totalCount int64

	db := r.applyFilters(r.db.WithContext(ctx).Model(&Venue{}), query)

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Amenities")

	switch query.SortBy {
	case "price_asc":
		db = db.Order("price ASC")
	case "price_desc":
		db = db.Order("price DESC")
	case "capacity":
		db = db.Order("capacity DESC")
	default:
		db = db.Order("created_at DESC")
	}

	if query.Limit > 0 {
		page := query.Page
		if page <= 0 {
			page = 1
		}
		db = db.Offset((page - 1) * query.Limit).Limit(query.Limit)
	}

	err := db.Find(&matched).Error
	return matched, totalCount, err
}

func (r *repository) ListVenuesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Venue, error) {
	var owned []Venue
	err := r.db.WithContext(ctx).
		Preload("Amenities").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&owned).Error
	return owned, err
}

func (r *repository) VenuesMissingCoordinates(ctx context.Context, query ListQuery, limit int) ([]Venue, error) {
	var missing []Venue
	db := r.applyFilters(r.db.WithContext(ctx).Model(&Venue{}), query)
	err := db.
		Where("longitude = 0 AND latitude = 0").
		Where("address <> ''").
		Limit(limit).
		Find(&missing).Error
	return missing, err
}

func (r *repository) UpdateVenueCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	return r.db.WithContext(ctx).
		Model(&Venue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"latitude":  latitude,
			"longitude": longitude,
		}).Error
}

func (r *repository) GetAmenitiesBySlugs(ctx context.Context, slugs []string) ([]Amenity, error) {
	var amenities []Amenity
	err := r.db.WithContext(ctx).
		Where("slug IN ? AND is_active = ?", slugs, true).
		Find(&amenities).Error
	return amenities, err
}

func (r *repository) CreateAmenity(ctx context.Context, amenity *Amenity) error {
	return r.db.WithContext(ctx).Create(amenity).Error
}

func (r *repository) ReplaceVenueAmenities(ctx context.Context, venue *Venue, amenities []Amenity) error {
	return r.db.WithContext(ctx).Model(venue).Association("Amenities").Replace(amenities)
}

func (r *repository) GetCalendar(ctx context.Context, venueID uuid.UUID) (*CalendarSnapshot, error) {
	// Existence check keeps NotFound distinct from an empty calendar
	var count int64
	if err := r.db.WithContext(ctx).Model(&Venue{}).Where("id = ?", venueID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrVenueNotFound
	}

	snapshot := &CalendarSnapshot{VenueID: venueID}

	if err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).Find(&snapshot.Booked).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).Find(&snapshot.Blocked).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).Find(&snapshot.Allowed).Error; err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ReserveDate atomically inserts a booked-date row for the venue. The whole
// check-and-insert runs inside one transaction holding the venue row lock,
// and the unique (venue_id, date) index is the final arbiter: a concurrent
// reservation that wins the race leaves RowsAffected at zero here.
func (r *repository) ReserveDate(ctx context.Context, venueID uuid.UUID, date time.Time, bookingID *uuid.UUID) error {
	day := DayUTC(date)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", venueID).
			First(&venue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		// Blocked wins over everything
		var blocked int64
		if err := tx.Model(&BlockedDate{}).
			Where("venue_id = ? AND date = ?", venueID, day).
			Count(&blocked).Error; err != nil {
			return err
		}
		if blocked > 0 {
			return ErrDateUnavailable
		}

		// Allow-list mode: the day must be explicitly listed
		var allowTotal int64
		if err := tx.Model(&AvailableDate{}).
			Where("venue_id = ?", venueID).
			Count(&allowTotal).Error; err != nil {
			return err
		}
		if allowTotal > 0 {
			var listed int64
			if err := tx.Model(&AvailableDate{}).
				Where("venue_id = ? AND date = ?", venueID, day).
				Count(&listed).Error; err != nil {
				return err
			}
			if listed == 0 {
				return ErrDateUnavailable
			}
		}

		entry := BookedDate{
			ID:        uuid.New(),
			VenueID:   venueID,
			Date:      day,
			BookingID: bookingID,
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already reserved: idempotent success when it is our own
			// booking, conflict otherwise
			if bookingID != nil {
				var own int64
				if err := tx.Model(&BookedDate{}).
					Where("venue_id = ? AND date = ? AND booking_id = ?", venueID, day, *bookingID).
					Count(&own).Error; err != nil {
					return err
				}
				if own > 0 {
					return nil
				}
			}
			return ErrDateUnavailable
		}

		return nil
	})
}

func (r *repository) ReleaseByBooking(ctx context.Context, venueID, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", venueID).
			First(&venue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		// No-op when the booking never reserved a date
		return tx.Where("venue_id = ? AND booking_id = ?", venueID, bookingID).
			Delete(&BookedDate{}).Error
	})
}

func (r *repository) InsertBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time, reason string, blockedBy uuid.UUID) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", venueID).
			First(&venue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		for _, date := range dates {
			entry := BlockedDate{
				ID:        uuid.New(),
				VenueID:   venueID,
				Date:      DayUTC(date),
				Reason:    reason,
				BlockedBy: blockedBy,
			}
			// Idempotent per date: already-blocked days are skipped
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
			if result.Error != nil {
				return result.Error
			}
			inserted += int(result.RowsAffected)
		}
		return nil
	})
	return inserted, err
}

func (r *repository) DeleteBlockedDates(ctx context.Context, venueID uuid.UUID, dates []time.Time) error {
	days := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		days = append(days, DayUTC(date))
	}
	return r.db.WithContext(ctx).
		Where("venue_id = ? AND date IN ?", venueID, days).
		Delete(&BlockedDate{}).Error
}

func (r *repository) MarkManuallyBooked(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", venueID).
			First(&venue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		for _, date := range dates {
			entry := BookedDate{
				ID:      uuid.New(),
				VenueID: venueID,
				Date:    DayUTC(date),
				// BookingID stays nil for offline bookings
			}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
			if result.Error != nil {
				return result.Error
			}
			inserted += int(result.RowsAffected)
		}
		return nil
	})
	return inserted, err
}

// ReplaceAvailableDates swaps the entire allow-list. This is a destructive
// overwrite: callers must always pass the complete desired list.
func (r *repository) ReplaceAvailableDates(ctx context.Context, venueID uuid.UUID, entries []AvailableDate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue Venue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", venueID).
			First(&venue).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		if err := tx.Where("venue_id = ?", venueID).Delete(&AvailableDate{}).Error; err != nil {
			return err
		}

		for i := range entries {
			entries[i].ID = uuid.New()
			entries[i].VenueID = venueID
			entries[i].Date = DayUTC(entries[i].Date)
		}

		if len(entries) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
	})
}

// applyFilters applies attribute filters to the venue query
func (r *repository) applyFilters(db *gorm.DB, query ListQuery) *gorm.DB {
	if query.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	if query.City != "" {
		db = db.Where("LOWER(city) = ?", strings.ToLower(query.City))
	}

	if query.EventType != "" {
		db = db.Where("LOWER(event_types) LIKE ?", "%"+strings.ToLower(query.EventType)+"%")
	}

	if query.PriceMin > 0 {
		db = db.Where("price >= ?", query.PriceMin)
	}
	if query.PriceMax > 0 {
		db = db.Where("price <= ?", query.PriceMax)
	}

	if query.CapacityMin > 0 {
		db = db.Where("capacity >= ?", query.CapacityMin)
	}
	if query.CapacityMax > 0 {
		db = db.Where("capacity <= ?", query.CapacityMax)
	}

	if len(query.Amenities) > 0 {
		subquery := r.db.Table("venue_amenities").
			Joins("JOIN amenities ON venue_amenities.amenity_id = amenities.id").
			Where("amenities.slug IN ? AND amenities.is_active = ?", query.Amenities, true).
			Select("venue_amenities.venue_id")
		db = db.Where("id IN (?)", subquery)
	}

	return db
}
