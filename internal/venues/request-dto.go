package venues

type CreateVenueRequest struct {
	Name        string   `json:"name" binding:"required,min=3,max=255"`
	Description string   `json:"description" binding:"max=2000"`
	Address     string   `json:"address" binding:"required,max=500"`
	City        string   `json:"city" binding:"required,max=100"`
	Capacity    int      `json:"capacity" binding:"required,min=1"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	EventTypes  []string `json:"event_types" binding:"omitempty,max=20"`
	Amenities   []string `json:"amenities" binding:"omitempty,max=30"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
}

type UpdateVenueRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Address     *string  `json:"address" binding:"omitempty,max=500"`
	City        *string  `json:"city" binding:"omitempty,max=100"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=1"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	EventTypes  []string `json:"event_types" binding:"omitempty,max=20"`
	Amenities   []string `json:"amenities" binding:"omitempty,max=30"`
	IsActive    *bool    `json:"is_active"`
}

type SearchVenuesRequest struct {
	Search      string   `form:"search" binding:"omitempty,max=255"`
	City        string   `form:"city" binding:"omitempty,max=100"`
	EventType   string   `form:"event_type" binding:"omitempty,max=100"`
	PriceMin    float64  `form:"price_min" binding:"omitempty,min=0"`
	PriceMax    float64  `form:"price_max" binding:"omitempty,min=0"`
	CapacityMin int      `form:"capacity_min" binding:"omitempty,min=0"`
	CapacityMax int      `form:"capacity_max" binding:"omitempty,min=0"`
	Amenities   []string `form:"amenities" binding:"omitempty,max=30"`
	Latitude    *float64 `form:"lat" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `form:"lng" binding:"omitempty,min=-180,max=180"`
	RadiusKm    float64  `form:"radius_km" binding:"omitempty,gt=0,max=1000"`
	SortBy      string   `form:"sort_by" binding:"omitempty,oneof=distance price_asc price_desc capacity recent"`
	Page        int      `form:"page" binding:"omitempty,min=1"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

type BlockDatesRequest struct {
	Dates  []string `json:"dates" binding:"required,min=1,max=90,dive,datetime=2006-01-02"`
	Reason string   `json:"reason" binding:"omitempty,max=500"`
}

type UnblockDatesRequest struct {
	Dates []string `json:"dates" binding:"required,min=1,max=90,dive,datetime=2006-01-02"`
}

type ManualBookingRequest struct {
	Dates []string `json:"dates" binding:"required,min=1,max=90,dive,datetime=2006-01-02"`
}

type AvailableDateEntry struct {
	Date  string   `json:"date" binding:"required,datetime=2006-01-02"`
	Slots []string `json:"slots" binding:"omitempty,max=10"`
}

type SetAvailableDatesRequest struct {
	Dates []AvailableDateEntry `json:"dates" binding:"required,dive"`
}

type ListAvailabilityQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
