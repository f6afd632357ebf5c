package venues

import (
	"time"

	"github.com/google/uuid"
)

type VenueResponse struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Capacity    int        `json:"capacity"`
	Price       float64    `json:"price"`
	EventTypes  []string   `json:"event_types"`
	Amenities   []string   `json:"amenities"`
	IsActive    bool       `json:"is_active"`
	Coordinates *[2]float64 `json:"coordinates,omitempty"` // [longitude, latitude]
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToVenueResponse(v *Venue) VenueResponse {
	amenities := make([]string, 0, len(v.Amenities))
	for _, a := range v.Amenities {
		amenities = append(amenities, a.Slug)
	}

	resp := VenueResponse{
		ID:          v.ID,
		OwnerID:     v.OwnerID,
		Name:        v.Name,
		Description: v.Description,
		Address:     v.Address,
		City:        v.City,
		Capacity:    v.Capacity,
		Price:       v.Price,
		EventTypes:  v.EventTypeList(),
		Amenities:   amenities,
		IsActive:    v.IsActive,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}

	if v.HasValidCoordinates() {
		coords := v.Coordinates()
		resp.Coordinates = &coords
	}

	return resp
}

type SearchHitResponse struct {
	VenueResponse
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type SearchVenuesResponse struct {
	Venues     []SearchHitResponse `json:"venues"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

func ToSearchResponse(result *SearchResult) SearchVenuesResponse {
	hits := make([]SearchHitResponse, 0, len(result.Hits))
	for i := range result.Hits {
		hits = append(hits, SearchHitResponse{
			VenueResponse: ToVenueResponse(&result.Hits[i].Venue),
			DistanceKm:    result.Hits[i].DistanceKm,
		})
	}
	return SearchVenuesResponse{
		Venues:     hits,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	}
}

type AvailabilityResponse struct {
	VenueID uuid.UUID     `json:"venue_id"`
	Mode    string        `json:"mode"`
	From    time.Time     `json:"from"`
	To      time.Time     `json:"to"`
	Days    []CalendarDay `json:"days"`
}

type CalendarMutationResponse struct {
	VenueID  uuid.UUID `json:"venue_id"`
	Affected int       `json:"affected"`
}
