package venues

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Venue represents a bookable hall listed by an owner
type Venue struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"size:500" json:"address"`
	City        string    `gorm:"size:100;index" json:"city"`
	Capacity    int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	EventTypes  string    `gorm:"size:500" json:"event_types"` // comma-separated, e.g. "wedding,conference"
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`

	// Geo coordinates. Zero values mean "not geocoded yet"; the search
	// pipeline backfills them best-effort from Address.
	Longitude float64 `gorm:"default:0" json:"-"`
	Latitude  float64 `gorm:"default:0" json:"-"`

	// Many-to-many relationship with amenities
	Amenities []Amenity `json:"amenities,omitempty" gorm:"many2many:venue_amenities;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Amenity represents a facility a venue offers (parking, catering, AC...)
type Amenity struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"unique;not null;size:100" json:"name"`
	Slug     string    `gorm:"unique;not null;size:100" json:"slug"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BookedDate marks a calendar day as taken. BookingID is null for
// manually-marked offline bookings. The unique (venue_id, date) index is
// what makes Reserve a single compare-and-set.
type BookedDate struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_venue_booked_date" json:"venue_id"`
	Date      time.Time  `gorm:"type:date;not null;uniqueIndex:idx_venue_booked_date" json:"date"`
	BookingID *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// BlockedDate marks a day as owner/admin-blocked
type BlockedDate struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_venue_blocked_date" json:"venue_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_venue_blocked_date" json:"date"`
	Reason    string    `gorm:"size:255" json:"reason"`
	BlockedBy uuid.UUID `gorm:"type:uuid" json:"blocked_by"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AvailableDate is one entry of the explicit allow-list. When a venue has
// any rows here, only listed days are bookable.
type AvailableDate struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_venue_available_date" json:"venue_id"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_venue_available_date" json:"date"`
	Slots     string    `gorm:"size:500" json:"slots"` // comma-separated slot labels
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for Venue
func (Venue) TableName() string {
	return "venues"
}

// TableName sets the table name for Amenity
func (Amenity) TableName() string {
	return "amenities"
}

// TableName sets the table name for BookedDate
func (BookedDate) TableName() string {
	return "venue_booked_dates"
}

// TableName sets the table name for BlockedDate
func (BlockedDate) TableName() string {
	return "venue_blocked_dates"
}

// TableName sets the table name for AvailableDate
func (AvailableDate) TableName() string {
	return "venue_available_dates"
}

// HasValidCoordinates reports whether the venue carries a usable,
// non-zero coordinate pair
func (v *Venue) HasValidCoordinates() bool {
	return v.Longitude != 0 || v.Latitude != 0
}

// Coordinates returns the stored pair in [longitude, latitude] order
func (v *Venue) Coordinates() [2]float64 {
	return [2]float64{v.Longitude, v.Latitude}
}

// DayUTC truncates a timestamp to its UTC calendar day. All calendar
// comparisons happen at this granularity in a single reference time zone.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day
func SameDay(a, b time.Time) bool {
	return DayUTC(a).Equal(DayUTC(b))
}

// SlotList splits the stored comma-separated slot labels
func (d *AvailableDate) SlotList() []string {
	if d.Slots == "" {
		return nil
	}
	parts := strings.Split(d.Slots, ",")
	slots := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			slots = append(slots, trimmed)
		}
	}
	return slots
}

func joinSlots(slots []string) string {
	cleaned := make([]string, 0, len(slots))
	for _, slot := range slots {
		if trimmed := strings.TrimSpace(slot); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ",")
}

// EventTypeList splits the stored comma-separated event types
func (v *Venue) EventTypeList() []string {
	if v.EventTypes == "" {
		return nil
	}
	parts := strings.Split(v.EventTypes, ",")
	types := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	return types
}
