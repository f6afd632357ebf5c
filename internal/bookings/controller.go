package bookings

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

func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.Create(ctx.Request.Context(), ctx.GetString("user_id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", result, nil)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	booking, err := c.service.GetBooking(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (c *Controller) ListMyBookings(ctx *gin.Context) {
	var req BookingListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.ListCustomerBookings(ctx.Request.Context(), ctx.GetString("user_id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

func (c *Controller) ListVenueBookings(ctx *gin.Context) {
	var req BookingListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, response.BindingErrors(err))
		return
	}

	result, err := c.service.ListVenueBookings(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venue bookings retrieved successfully", result, nil)
}

func (c *Controller) CancelBooking(ctx *gin.Context) {
	var req CancelBookingRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
			return
		}
	}

	booking, err := c.service.Cancel(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

func (c *Controller) ApproveBooking(ctx *gin.Context) {
	booking, err := c.service.OwnerApprove(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking approved successfully", booking, nil)
}

func (c *Controller) RejectBooking(ctx *gin.Context) {
	var req RejectBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	booking, err := c.service.OwnerReject(ctx.Request.Context(), ctx.GetString("user_id"), ctx.GetString("user_role"), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking rejected successfully", booking, nil)
}
