package venues_test

import (
	"context"
	"testing"
	"time"

	"venuely/internal/geocode"
	"venuely/internal/shared/config"
	"venuely/internal/venues"
	"venuely/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ResolveAddress(ctx context.Context, address string) (*geocode.Location, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Location), args.Error(1)
}

// Bengaluru city center, used as the search origin in geo tests
const (
	originLat = 12.9716
	originLng = 77.5946
)

func geoVenue(name string, lat, lng float64) venues.Venue {
	return venues.Venue{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      name,
		Address:   "1 Test Road",
		City:      "Bengaluru",
		Capacity:  200,
		Price:     50000,
		IsActive:  true,
		Latitude:  lat,
		Longitude: lng,
	}
}

func newSearchService(repo venues.Repository, geocoder geocode.Client) venues.SearchService {
	return venues.NewSearchService(repo, geocoder, config.SearchConfig{
		MaxDistanceKm:   50,
		RepairBatchSize: 2,
	}, logger.New())
}

func TestHaversineKnownDistances(t *testing.T) {
	// Bengaluru to Mysuru is roughly 128 km great-circle
	d := venues.Haversine(12.9716, 77.5946, 12.2958, 76.6394)
	assert.InDelta(t, 128, d, 5)

	// Bengaluru to Chennai is roughly 290 km great-circle
	d = venues.Haversine(12.9716, 77.5946, 13.0827, 80.2707)
	assert.InDelta(t, 290, d, 10)

	assert.Zero(t, venues.Haversine(originLat, originLng, originLat, originLng))
}

func TestSearchWithoutCoordinatesSkipsGeoPipeline(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGeo := new(MockGeocoder)
	svc := newSearchService(mockRepo, mockGeo)

	matched := []venues.Venue{geoVenue("Hall A", originLat, originLng)}
	mockRepo.On("ListVenues", mock.Anything, mock.MatchedBy(func(q venues.ListQuery) bool {
		return q.ActiveOnly && q.Limit == 20 && q.Page == 1
	})).Return(matched, int64(1), nil)

	result, err := svc.Search(context.Background(), venues.SearchRequest{})

	assert.NoError(t, err)
	assert.Len(t, result.Hits, 1)
	assert.Nil(t, result.Hits[0].DistanceKm, "distance is only populated in geo mode")
	mockGeo.AssertNotCalled(t, "ResolveAddress")
}

func TestSearchRejectsOutOfRangeCoordinates(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newSearchService(mockRepo, new(MockGeocoder))

	lat, lng := 95.0, 77.5946
	_, err := svc.Search(context.Background(), venues.SearchRequest{Latitude: &lat, Longitude: &lng})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "ListVenues")
}

func TestGeoSearchFiltersByRadiusAndSortsByDistance(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newSearchService(mockRepo, new(MockGeocoder))

	near := geoVenue("Near Hall", originLat+0.01, originLng)       // ~1 km
	mid := geoVenue("Mid Hall", originLat+0.2, originLng)          // ~22 km
	far := geoVenue("Mysuru Hall", 12.2958, 76.6394)               // ~128 km, outside default radius
	mockRepo.On("ListVenues", mock.Anything, mock.MatchedBy(func(q venues.ListQuery) bool {
		return q.Limit == 0 // geo mode loads the full match set before paginating
	})).Return([]venues.Venue{far, mid, near}, int64(3), nil)
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, mock.Anything).
		Return([]venues.Venue{}, nil)

	lat, lng := originLat, originLng
	result, err := svc.Search(context.Background(), venues.SearchRequest{Latitude: &lat, Longitude: &lng})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)
	assert.Len(t, result.Hits, 2)
	assert.Equal(t, "Near Hall", result.Hits[0].Venue.Name)
	assert.Equal(t, "Mid Hall", result.Hits[1].Venue.Name)
	assert.NotNil(t, result.Hits[0].DistanceKm)
	assert.Less(t, *result.Hits[0].DistanceKm, *result.Hits[1].DistanceKm)
}

func TestGeoSearchPaginatesAfterDistanceFilter(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newSearchService(mockRepo, new(MockGeocoder))

	var matched []venues.Venue
	for i := 0; i < 5; i++ {
		matched = append(matched, geoVenue("In Range", originLat+float64(i)*0.01, originLng))
	}
	// Out-of-range venues interleaved with in-range ones must not eat page slots
	matched = append(matched, geoVenue("Far Away", 12.2958, 76.6394))
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return(matched, int64(len(matched)), nil)
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, mock.Anything).
		Return([]venues.Venue{}, nil)

	lat, lng := originLat, originLng
	result, err := svc.Search(context.Background(), venues.SearchRequest{
		ListQuery: venues.ListQuery{Page: 2, Limit: 2},
		Latitude:  &lat,
		Longitude: &lng,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Len(t, result.Hits, 2)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 2, result.Page)
}

func TestGeoSearchRepairsMissingCoordinates(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGeo := new(MockGeocoder)
	svc := newSearchService(mockRepo, mockGeo)

	broken := geoVenue("Ungeocoded Hall", 0, 0)
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return([]venues.Venue{broken}, int64(1), nil)
	// The missing set is scanned in SQL, bounded by the repair batch size
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, 2).
		Return([]venues.Venue{broken}, nil)
	mockGeo.On("ResolveAddress", mock.Anything, "1 Test Road, Bengaluru").
		Return(&geocode.Location{Latitude: originLat + 0.01, Longitude: originLng}, nil)
	mockRepo.On("UpdateVenueCoordinates", mock.Anything, broken.ID, originLat+0.01, originLng).Return(nil)

	lat, lng := originLat, originLng
	result, err := svc.Search(context.Background(), venues.SearchRequest{Latitude: &lat, Longitude: &lng})

	assert.NoError(t, err)
	assert.Len(t, result.Hits, 1)
	assert.Equal(t, "Ungeocoded Hall", result.Hits[0].Venue.Name)
	mockRepo.AssertExpectations(t)
	mockGeo.AssertExpectations(t)
}

func TestGeoSearchRepairIsBestEffort(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGeo := new(MockGeocoder)
	svc := newSearchService(mockRepo, mockGeo)

	broken := geoVenue("Ungeocoded Hall", 0, 0)
	healthy := geoVenue("Near Hall", originLat+0.01, originLng)
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return([]venues.Venue{broken, healthy}, int64(2), nil)
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, mock.Anything).
		Return([]venues.Venue{broken}, nil)
	mockGeo.On("ResolveAddress", mock.Anything, mock.Anything).Return(nil, geocode.ErrServiceUnavailable)

	lat, lng := originLat, originLng
	result, err := svc.Search(context.Background(), venues.SearchRequest{Latitude: &lat, Longitude: &lng})

	// A geocoder outage never fails the search, the broken venue just drops out
	assert.NoError(t, err)
	assert.Len(t, result.Hits, 1)
	assert.Equal(t, "Near Hall", result.Hits[0].Venue.Name)
}

func TestGeoSearchRepairBatchIsBounded(t *testing.T) {
	mockRepo := new(MockRepository)
	mockGeo := new(MockGeocoder)
	svc := newSearchService(mockRepo, mockGeo) // RepairBatchSize 2

	var matched []venues.Venue
	for i := 0; i < 5; i++ {
		matched = append(matched, geoVenue("Ungeocoded", 0, 0))
	}
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return(matched, int64(5), nil)
	// The SQL scan caps the batch, so only that many venues come back
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, 2).
		Return(matched[:2], nil)
	mockGeo.On("ResolveAddress", mock.Anything, mock.Anything).Return(nil, geocode.ErrNotFound)

	lat, lng := originLat, originLng
	_, err := svc.Search(context.Background(), venues.SearchRequest{Latitude: &lat, Longitude: &lng})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockGeo.AssertNumberOfCalls(t, "ResolveAddress", 2)
}

func TestGeoSearchSortByPriceOverridesDistance(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newSearchService(mockRepo, new(MockGeocoder))

	near := geoVenue("Near Expensive", originLat+0.01, originLng)
	near.Price = 90000
	mid := geoVenue("Mid Cheap", originLat+0.2, originLng)
	mid.Price = 30000
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return([]venues.Venue{near, mid}, int64(2), nil)
	mockRepo.On("VenuesMissingCoordinates", mock.Anything, mock.Anything, mock.Anything).
		Return([]venues.Venue{}, nil)

	lat, lng := originLat, originLng
	result, err := svc.Search(context.Background(), venues.SearchRequest{
		ListQuery: venues.ListQuery{SortBy: "price_asc"},
		Latitude:  &lat,
		Longitude: &lng,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Mid Cheap", result.Hits[0].Venue.Name)
	assert.Equal(t, "Near Expensive", result.Hits[1].Venue.Name)
}

func TestTotalPagesRounding(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := newSearchService(mockRepo, new(MockGeocoder))

	matched := []venues.Venue{geoVenue("Hall", originLat, originLng)}
	mockRepo.On("ListVenues", mock.Anything, mock.Anything).Return(matched, int64(21), nil)

	result, err := svc.Search(context.Background(), venues.SearchRequest{
		ListQuery: venues.ListQuery{Limit: 10},
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalPages)
}

// Keeps the fixture helpers honest about calendar-day comparisons used above
func TestDayUTCNormalization(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2026, 9, 15, 23, 30, 0, 0, ist) // 18:00 UTC on Sep 15

	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), venues.DayUTC(late))
	assert.True(t, venues.SameDay(late, time.Date(2026, 9, 15, 2, 0, 0, 0, time.UTC)))
	assert.False(t, venues.SameDay(late, time.Date(2026, 9, 16, 2, 0, 0, 0, time.UTC)))
}
