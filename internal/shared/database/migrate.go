package database

import (
	"venuely/internal/bookings"
	"venuely/internal/payments"
	"venuely/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&venues.Venue{},
		&venues.Amenity{},
		&venues.BookedDate{},
		&venues.BlockedDate{},
		&venues.AvailableDate{},
		&bookings.Booking{},
		&payments.Transaction{},
	)
}
