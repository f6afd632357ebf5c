package bookings

import (
	"venuely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Customer routes
	customer := rg.Group("/bookings")
	customer.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleCustomer, middleware.RoleAdmin))
	{
		customer.POST("", controller.CreateBooking)          // POST /api/v1/bookings
		customer.GET("", controller.ListMyBookings)          // GET /api/v1/bookings
		customer.GET("/:id", controller.GetBooking)          // GET /api/v1/bookings/:id
		customer.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	// Owner decision routes
	owner := rg.Group("/owner")
	owner.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOwner, middleware.RoleAdmin))
	{
		owner.GET("/venues/:id/bookings", controller.ListVenueBookings) // GET /api/v1/owner/venues/:id/bookings
		owner.POST("/bookings/:id/approve", controller.ApproveBooking)       // POST /api/v1/owner/bookings/:id/approve
		owner.POST("/bookings/:id/reject", controller.RejectBooking)         // POST /api/v1/owner/bookings/:id/reject
	}
}
