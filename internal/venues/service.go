package venues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venuely/internal/geocode"
	"venuely/internal/shared/apperr"
	"venuely/internal/shared/middleware"
	"venuely/pkg/cache"
	"venuely/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Venue CRUD
	CreateVenue(ctx context.Context, ownerID string, req CreateVenueRequest) (*VenueResponse, error)
	GetVenue(ctx context.Context, id string) (*VenueResponse, error)
	UpdateVenue(ctx context.Context, actorID, role, id string, req UpdateVenueRequest) (*VenueResponse, error)
	ListOwnerVenues(ctx context.Context, ownerID string) ([]VenueResponse, error)

	// Search
	Search(ctx context.Context, req SearchVenuesRequest) (*SearchVenuesResponse, error)

	// Owner calendar operations
	BlockDates(ctx context.Context, actorID, role, venueID string, req BlockDatesRequest) (*CalendarMutationResponse, error)
	UnblockDates(ctx context.Context, actorID, role, venueID string, req UnblockDatesRequest) error
	MarkManuallyBooked(ctx context.Context, actorID, role, venueID string, req ManualBookingRequest) (*CalendarMutationResponse, error)
	SetAvailableDates(ctx context.Context, actorID, role, venueID string, req SetAvailableDatesRequest) error
	ListAvailability(ctx context.Context, venueID string, query ListAvailabilityQuery) (*AvailabilityResponse, error)
}

type service struct {
	repo     Repository
	calendar CalendarService
	search   SearchService
	geocoder geocode.Client
	cache    cache.Service
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewService(repo Repository, calendar CalendarService, search SearchService, geocoder geocode.Client, cacheTTL time.Duration, log *logger.Logger) Service {
	var store cache.Service
	if client := cache.Client(); client != nil {
		store = cache.NewService(client)
	}
	return &service{
		repo:     repo,
		calendar: calendar,
		search:   search,
		geocoder: geocoder,
		cache:    store,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

//  VENUE CRUD

func (s *service) CreateVenue(ctx context.Context, ownerID string, req CreateVenueRequest) (*VenueResponse, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, apperr.Validation("invalid owner ID")
	}

	venue := &Venue{
		ID:          uuid.New(),
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Capacity:    req.Capacity,
		Price:       req.Price,
		EventTypes:  strings.Join(req.EventTypes, ","),
		IsActive:    true,
	}

	if req.Longitude != nil && req.Latitude != nil {
		venue.Longitude = *req.Longitude
		venue.Latitude = *req.Latitude
	} else {
		// Best effort: a geocoder miss leaves zero coordinates for the
		// search repair pass to backfill later
		s.backfillCoordinates(ctx, venue)
	}

	amenities, err := s.resolveAmenities(ctx, req.Amenities)
	if err != nil {
		return nil, err
	}
	venue.Amenities = amenities

	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	if err := InvalidateVenueCache(ctx, s.cache, venue.ID.String()); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	resp := ToVenueResponse(venue)
	return &resp, nil
}

func (s *service) GetVenue(ctx context.Context, id string) (*VenueResponse, error) {
	venueID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid venue ID")
	}

	cacheKey := cacheKeyVenue + id
	var cached VenueResponse
	if err := GetCache(ctx, s.cache, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	venue, err := s.repo.GetVenueByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	resp := ToVenueResponse(venue)
	if err := SetCache(ctx, s.cache, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache venue", "error", err)
	}

	return &resp, nil
}

func (s *service) UpdateVenue(ctx context.Context, actorID, role, id string, req UpdateVenueRequest) (*VenueResponse, error) {
	venue, err := s.requireOwnership(ctx, id, actorID, role)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.EventTypes != nil {
		updates["event_types"] = strings.Join(req.EventTypes, ",")
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Address != nil && *req.Address != venue.Address {
		updates["address"] = *req.Address
		// A moved venue must not keep stale coordinates
		updates["longitude"] = float64(0)
		updates["latitude"] = float64(0)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateVenue(ctx, venue.ID, updates); err != nil {
			return nil, fmt.Errorf("failed to update venue: %w", err)
		}
	}

	if req.Amenities != nil {
		amenities, err := s.resolveAmenities(ctx, req.Amenities)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceVenueAmenities(ctx, venue, amenities); err != nil {
			return nil, fmt.Errorf("failed to update venue amenities: %w", err)
		}
	}

	if err := InvalidateVenueCache(ctx, s.cache, id); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	updated, err := s.repo.GetVenueByID(ctx, venue.ID)
	if err != nil {
		return nil, err
	}

	resp := ToVenueResponse(updated)
	return &resp, nil
}

func (s *service) ListOwnerVenues(ctx context.Context, ownerID string) ([]VenueResponse, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, apperr.Validation("invalid owner ID")
	}

	cacheKey := cacheKeyOwnerVenues + ownerID
	var cached []VenueResponse
	if err := GetCache(ctx, s.cache, cacheKey, &cached); err == nil {
		return cached, nil
	}

	owned, err := s.repo.ListVenuesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner venues: %w", err)
	}

	responses := make([]VenueResponse, 0, len(owned))
	for i := range owned {
		responses = append(responses, ToVenueResponse(&owned[i]))
	}

	if err := SetCache(ctx, s.cache, cacheKey, responses, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache owner venues", "error", err)
	}

	return responses, nil
}

//  SEARCH

func (s *service) Search(ctx context.Context, req SearchVenuesRequest) (*SearchVenuesResponse, error) {
	searchReq := SearchRequest{
		ListQuery: ListQuery{
			Search:      req.Search,
			City:        req.City,
			EventType:   req.EventType,
			PriceMin:    req.PriceMin,
			PriceMax:    req.PriceMax,
			CapacityMin: req.CapacityMin,
			CapacityMax: req.CapacityMax,
			Amenities:   req.Amenities,
			SortBy:      req.SortBy,
			Page:        req.Page,
			Limit:       req.Limit,
		},
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKm:  req.RadiusKm,
	}

	result, err := s.search.Search(ctx, searchReq)
	if err != nil {
		return nil, err
	}

	resp := ToSearchResponse(result)
	return &resp, nil
}

//  OWNER CALENDAR OPERATIONS

func (s *service) BlockDates(ctx context.Context, actorID, role, venueID string, req BlockDatesRequest) (*CalendarMutationResponse, error) {
	venue, err := s.requireOwnership(ctx, venueID, actorID, role)
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(req.Dates)
	if err != nil {
		return nil, err
	}

	actor, _ := uuid.Parse(actorID)
	inserted, err := s.calendar.Block(ctx, venue.ID, dates, req.Reason, actor)
	if err != nil {
		return nil, err
	}

	if err := InvalidateVenueCache(ctx, s.cache, venueID); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	return &CalendarMutationResponse{VenueID: venue.ID, Affected: inserted}, nil
}

func (s *service) UnblockDates(ctx context.Context, actorID, role, venueID string, req UnblockDatesRequest) error {
	venue, err := s.requireOwnership(ctx, venueID, actorID, role)
	if err != nil {
		return err
	}

	dates, err := parseDates(req.Dates)
	if err != nil {
		return err
	}

	if err := s.calendar.Unblock(ctx, venue.ID, dates); err != nil {
		return err
	}

	if err := InvalidateVenueCache(ctx, s.cache, venueID); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	return nil
}

func (s *service) MarkManuallyBooked(ctx context.Context, actorID, role, venueID string, req ManualBookingRequest) (*CalendarMutationResponse, error) {
	venue, err := s.requireOwnership(ctx, venueID, actorID, role)
	if err != nil {
		return nil, err
	}

	dates, err := parseDates(req.Dates)
	if err != nil {
		return nil, err
	}

	inserted, err := s.calendar.MarkManuallyBooked(ctx, venue.ID, dates)
	if err != nil {
		return nil, err
	}

	if err := InvalidateVenueCache(ctx, s.cache, venueID); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	return &CalendarMutationResponse{VenueID: venue.ID, Affected: inserted}, nil
}

func (s *service) SetAvailableDates(ctx context.Context, actorID, role, venueID string, req SetAvailableDatesRequest) error {
	venue, err := s.requireOwnership(ctx, venueID, actorID, role)
	if err != nil {
		return err
	}

	inputs := make([]AvailableDateInput, 0, len(req.Dates))
	for _, entry := range req.Dates {
		day, err := time.Parse("2006-01-02", entry.Date)
		if err != nil {
			return apperr.Validation("invalid date: %s", entry.Date)
		}
		inputs = append(inputs, AvailableDateInput{Date: day, Slots: entry.Slots})
	}

	if err := s.calendar.SetAvailableDates(ctx, venue.ID, inputs); err != nil {
		return err
	}

	if err := InvalidateVenueCache(ctx, s.cache, venueID); err != nil {
		s.logger.Warn("failed to invalidate venue cache", "error", err)
	}

	return nil
}

func (s *service) ListAvailability(ctx context.Context, venueID string, query ListAvailabilityQuery) (*AvailabilityResponse, error) {
	id, err := uuid.Parse(venueID)
	if err != nil {
		return nil, apperr.Validation("invalid venue ID")
	}

	var from, to time.Time
	if query.From != "" {
		from, err = time.Parse("2006-01-02", query.From)
		if err != nil {
			return nil, apperr.Validation("invalid 'from' date")
		}
	}
	if query.To != "" {
		to, err = time.Parse("2006-01-02", query.To)
		if err != nil {
			return nil, apperr.Validation("invalid 'to' date")
		}
	}

	days, mode, err := s.calendar.ListAvailability(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	resp := &AvailabilityResponse{
		VenueID: id,
		Mode:    mode.String(),
		Days:    days,
	}
	if len(days) > 0 {
		resp.From = days[0].Date
		resp.To = days[len(days)-1].Date
	}
	return resp, nil
}

//  HELPERS

func (s *service) requireOwnership(ctx context.Context, venueID, actorID, role string) (*Venue, error) {
	id, err := uuid.Parse(venueID)
	if err != nil {
		return nil, apperr.Validation("invalid venue ID")
	}

	venue, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role == middleware.RoleAdmin {
		return venue, nil
	}

	actor, err := uuid.Parse(actorID)
	if err != nil || venue.OwnerID != actor {
		return nil, apperr.Forbidden("you do not manage this venue")
	}

	return venue, nil
}

func (s *service) backfillCoordinates(ctx context.Context, venue *Venue) {
	address := venue.Address
	if venue.City != "" {
		address += ", " + venue.City
	}

	location, err := s.geocoder.ResolveAddress(ctx, address)
	if err != nil {
		s.logger.LogGeocodeSkipped(ctx, venue.ID.String(), err)
		return
	}

	venue.Latitude = location.Latitude
	venue.Longitude = location.Longitude
}

func (s *service) resolveAmenities(ctx context.Context, slugs []string) ([]Amenity, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		cleaned := strings.ToLower(strings.TrimSpace(slug))
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		normalized = append(normalized, cleaned)
	}

	existing, err := s.repo.GetAmenitiesBySlugs(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load amenities: %w", err)
	}

	bySlug := make(map[string]Amenity, len(existing))
	for _, amenity := range existing {
		bySlug[amenity.Slug] = amenity
	}

	amenities := make([]Amenity, 0, len(normalized))
	for _, slug := range normalized {
		if amenity, ok := bySlug[slug]; ok {
			amenities = append(amenities, amenity)
			continue
		}
		amenity := Amenity{
			ID:       uuid.New(),
			Name:     amenityNameFromSlug(slug),
			Slug:     slug,
			IsActive: true,
		}
		if err := s.repo.CreateAmenity(ctx, &amenity); err != nil {
			return nil, fmt.Errorf("failed to create amenity %s: %w", slug, err)
		}
		amenities = append(amenities, amenity)
	}

	return amenities, nil
}

func amenityNameFromSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func parseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, value := range raw {
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, apperr.Validation("invalid date: %s", value)
		}
		dates = append(dates, day)
	}
	return dates, nil
}
