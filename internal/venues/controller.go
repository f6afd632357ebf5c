package venues

import (
	"net/http"

	"venuely/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

//  VENUE CRUD

func (c *Controller) CreateVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	ownerID := ctx.GetString("user_id")
	venue, err := c.service.CreateVenue(ctx.Request.Context(), ownerID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Venue created successfully", venue, nil)
}

func (c *Controller) GetVenue(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Venue ID is required", nil, "missing venue ID")
		return
	}

	venue, err := c.service.GetVenue(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venue retrieved successfully", venue, nil)
}

func (c *Controller) UpdateVenue(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Venue ID is required", nil, "missing venue ID")
		return
	}

	var req UpdateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	venue, err := c.service.UpdateVenue(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), id, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venue updated successfully", venue, nil)
}

func (c *Controller) ListOwnerVenues(ctx *gin.Context) {
	owned, err := c.service.ListOwnerVenues(ctx.Request.Context(), ctx.GetString("user_id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venues retrieved successfully", owned, nil)
}

//  SEARCH

func (c *Controller) SearchVenues(ctx *gin.Context) {
	var req SearchVenuesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.Search(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venues retrieved successfully", result, nil)
}

//  CALENDAR

func (c *Controller) ListAvailability(ctx *gin.Context) {
	var query ListAvailabilityQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, response.BindingErrors(err))
		return
	}

	availability, err := c.service.ListAvailability(ctx.Request.Context(), ctx.Param("id"), query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", availability, nil)
}

func (c *Controller) BlockDates(ctx *gin.Context) {
	var req BlockDatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.BlockDates(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Dates blocked successfully", result, nil)
}

func (c *Controller) UnblockDates(ctx *gin.Context) {
	var req UnblockDatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	if err := c.service.UnblockDates(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Dates unblocked successfully", nil, nil)
}

func (c *Controller) MarkManuallyBooked(ctx *gin.Context) {
	var req ManualBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.MarkManuallyBooked(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Dates marked as booked successfully", result, nil)
}

func (c *Controller) SetAvailableDates(ctx *gin.Context) {
	var req SetAvailableDatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	if err := c.service.SetAvailableDates(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Available dates replaced successfully", nil, nil)
}
