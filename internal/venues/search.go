package venues

import (
	"context"
	"math"
	"sort"

	"venuely/internal/geocode"
	"venuely/internal/shared/apperr"
	"venuely/internal/shared/config"
	"venuely/pkg/logger"

	"github.com/google/uuid"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs given as (latitude, longitude) in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// SearchRequest is the full search input. Geo mode is active exactly when
// both Latitude and Longitude are provided.
type SearchRequest struct {
	ListQuery

	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
}

func (r *SearchRequest) geoMode() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SearchHit is one venue in a search result, with distance populated only
// in geo mode.
type SearchHit struct {
	Venue      Venue    `json:"venue"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type SearchResult struct {
	Hits       []SearchHit `json:"hits"`
	TotalCount int64       `json:"total_count"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

type SearchService interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

type searchService struct {
	repo     Repository
	geocoder geocode.Client
	cfg      config.SearchConfig
	logger   *logger.Logger
}

func NewSearchService(repo Repository, geocoder geocode.Client, cfg config.SearchConfig, log *logger.Logger) SearchService {
	return &searchService{
		repo:     repo,
		geocoder: geocoder,
		cfg:      cfg,
		logger:   log,
	}
}

func (s *searchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	req.ActiveOnly = true

	if !req.geoMode() {
		return s.attributeSearch(ctx, req)
	}

	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, apperr.Validation("coordinates out of range")
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = s.cfg.MaxDistanceKm
	}

	return s.geoSearch(ctx, req)
}

func (s *searchService) attributeSearch(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	matched, total, err := s.repo.ListVenues(ctx, req.ListQuery)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(matched))
	for i := range matched {
		hits = append(hits, SearchHit{Venue: matched[i]})
	}

	return &SearchResult{
		Hits:       hits,
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages(total, req.Limit),
	}, nil
}

// geoSearch runs the distance pipeline: load every attribute match, repair a
// bounded batch of missing coordinates, filter by radius, sort, then
// paginate. Pagination must come after the distance filter or pages would
// silently drop matches.
func (s *searchService) geoSearch(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	unpaged := req.ListQuery
	unpaged.Limit = 0

	matched, _, err := s.repo.ListVenues(ctx, unpaged)
	if err != nil {
		return nil, err
	}

	matched = s.repairCoordinates(ctx, matched, unpaged)

	type scored struct {
		venue    Venue
		distance float64
	}

	var inRange []scored
	for i := range matched {
		if !matched[i].HasValidCoordinates() {
			continue
		}
		d := Haversine(*req.Latitude, *req.Longitude, matched[i].Latitude, matched[i].Longitude)
		if d <= req.RadiusKm {
			inRange = append(inRange, scored{venue: matched[i], distance: d})
		}
	}

	switch req.SortBy {
	case "price_asc":
		sort.Slice(inRange, func(i, j int) bool { return inRange[i].venue.Price < inRange[j].venue.Price })
	case "price_desc":
		sort.Slice(inRange, func(i, j int) bool { return inRange[i].venue.Price > inRange[j].venue.Price })
	case "recent":
		sort.Slice(inRange, func(i, j int) bool { return inRange[i].venue.CreatedAt.After(inRange[j].venue.CreatedAt) })
	default:
		sort.Slice(inRange, func(i, j int) bool { return inRange[i].distance < inRange[j].distance })
	}

	total := int64(len(inRange))
	start := (req.Page - 1) * req.Limit
	if start > len(inRange) {
		start = len(inRange)
	}
	end := start + req.Limit
	if end > len(inRange) {
		end = len(inRange)
	}

	hits := make([]SearchHit, 0, end-start)
	for _, item := range inRange[start:end] {
		d := math.Round(item.distance*100) / 100
		hits = append(hits, SearchHit{Venue: item.venue, DistanceKm: &d})
	}

	return &SearchResult{
		Hits:       hits,
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages(total, req.Limit),
	}, nil
}

// repairCoordinates geocodes up to RepairBatchSize venues the attribute
// filters matched but that were never backfilled. The missing set is scanned
// in SQL so the batch bound applies before rows load. Strictly best effort:
// a geocoder outage or miss is logged and the venue simply stays out of geo
// results this time.
func (s *searchService) repairCoordinates(ctx context.Context, matched []Venue, query ListQuery) []Venue {
	missing, err := s.repo.VenuesMissingCoordinates(ctx, query, s.cfg.RepairBatchSize)
	if err != nil {
		s.logger.LogGeocodeSkipped(ctx, "", err)
		return matched
	}

	repaired := make(map[uuid.UUID]geocode.Location, len(missing))
	for i := range missing {
		address := missing[i].Address
		if missing[i].City != "" {
			address += ", " + missing[i].City
		}

		location, err := s.geocoder.ResolveAddress(ctx, address)
		if err != nil {
			s.logger.LogGeocodeSkipped(ctx, missing[i].ID.String(), err)
			continue
		}

		if err := s.repo.UpdateVenueCoordinates(ctx, missing[i].ID, location.Latitude, location.Longitude); err != nil {
			s.logger.LogGeocodeSkipped(ctx, missing[i].ID.String(), err)
			continue
		}

		repaired[missing[i].ID] = *location
	}

	for i := range matched {
		if location, ok := repaired[matched[i].ID]; ok {
			matched[i].Latitude = location.Latitude
			matched[i].Longitude = location.Longitude
		}
	}
	return matched
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
