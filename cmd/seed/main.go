package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"venuely/internal/shared/config"
	"venuely/internal/shared/database"
	"venuely/internal/venues"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Venuely database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payment_transactions",
		"bookings",
		"venue_booked_dates",
		"venue_blocked_dates",
		"venue_available_dates",
		"venue_amenities",
		"amenities",
		"venues",
	}

	db := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			// Table may not exist yet on a fresh database
			log.Printf("Warning: failed to truncate %s: %v", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	ctx := context.Background()
	repo := venues.NewRepository(s.db.GetPostgreSQL())

	amenities, err := s.seedAmenities(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to seed amenities: %w", err)
	}
	fmt.Printf("  seeded %d amenities\n", len(amenities))

	seeded, err := s.seedVenues(ctx, repo, amenities)
	if err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}
	fmt.Printf("  seeded %d venues\n", len(seeded))

	if err := s.seedCalendars(ctx, repo, seeded); err != nil {
		return fmt.Errorf("failed to seed calendars: %w", err)
	}
	fmt.Println("  seeded calendar entries")

	return nil
}

func (s *Seeder) seedAmenities(ctx context.Context, repo venues.Repository) ([]venues.Amenity, error) {
	names := map[string]string{
		"parking":          "Parking",
		"catering":         "Catering",
		"air-conditioning": "Air Conditioning",
		"stage":            "Stage",
		"sound-system":     "Sound System",
		"wifi":             "WiFi",
	}

	seeded := make([]venues.Amenity, 0, len(names))
	for slug, name := range names {
		amenity := venues.Amenity{
			ID:       uuid.New(),
			Name:     name,
			Slug:     slug,
			IsActive: true,
		}
		if err := repo.CreateAmenity(ctx, &amenity); err != nil {
			return nil, err
		}
		seeded = append(seeded, amenity)
	}
	return seeded, nil
}

func (s *Seeder) seedVenues(ctx context.Context, repo venues.Repository, amenities []venues.Amenity) ([]venues.Venue, error) {
	ownerOne := uuid.New()
	ownerTwo := uuid.New()

	samples := []venues.Venue{
		{
			ID:          uuid.New(),
			OwnerID:     ownerOne,
			Name:        "Grand Orchid Banquet Hall",
			Description: "Spacious banquet hall in the city centre with in-house catering.",
			Address:     "12 MG Road",
			City:        "Bengaluru",
			Capacity:    600,
			Price:       150000,
			EventTypes:  "wedding,reception,corporate",
			IsActive:    true,
			Longitude:   77.6033,
			Latitude:    12.9762,
			Amenities:   amenities[:4],
		},
		{
			ID:          uuid.New(),
			OwnerID:     ownerOne,
			Name:        "Lakeside Pavilion",
			Description: "Open-air pavilion overlooking the lake, ideal for receptions.",
			Address:     "3 Lake View Road",
			City:        "Bengaluru",
			Capacity:    250,
			Price:       80000,
			EventTypes:  "reception,birthday",
			IsActive:    true,
			Longitude:   77.5726,
			Latitude:    13.0105,
			Amenities:   amenities[2:5],
		},
		{
			ID:          uuid.New(),
			OwnerID:     ownerTwo,
			Name:        "Heritage Courtyard",
			Description: "Restored heritage property with a private courtyard.",
			Address:     "45 Residency Road",
			City:        "Mysuru",
			Capacity:    150,
			Price:       60000,
			EventTypes:  "wedding,engagement",
			IsActive:    true,
			// Coordinates left unset to exercise the search repair path
			Amenities: amenities[1:3],
		},
	}

	for i := range samples {
		if err := repo.CreateVenue(ctx, &samples[i]); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

func (s *Seeder) seedCalendars(ctx context.Context, repo venues.Repository, seeded []venues.Venue) error {
	today := venues.DayUTC(time.Now())

	// First venue: a couple of blocked days for maintenance
	blocked := []time.Time{today.AddDate(0, 0, 7), today.AddDate(0, 0, 8)}
	if _, err := repo.InsertBlockedDates(ctx, seeded[0].ID, blocked, "maintenance", seeded[0].OwnerID); err != nil {
		return err
	}

	// First venue: one offline booking taken over the phone
	if _, err := repo.MarkManuallyBooked(ctx, seeded[0].ID, []time.Time{today.AddDate(0, 0, 14)}); err != nil {
		return err
	}

	// Second venue runs on an allow-list of weekend dates
	var allowed []venues.AvailableDate
	for day := today; day.Before(today.AddDate(0, 2, 0)); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			allowed = append(allowed, venues.AvailableDate{
				Date:  day,
				Slots: "morning,evening",
			})
		}
	}
	if err := repo.ReplaceAvailableDates(ctx, seeded[1].ID, allowed); err != nil {
		return err
	}

	return nil
}
