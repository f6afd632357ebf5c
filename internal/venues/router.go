package venues

import (
	"venuely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public discovery routes
	public := rg.Group("/venues")
	{
		public.GET("/search", controller.SearchVenues)         // GET /api/v1/venues/search
		public.GET("/:id", controller.GetVenue)                // GET /api/v1/venues/:id
		public.GET("/:id/availability", controller.ListAvailability) // GET /api/v1/venues/:id/availability
	}

	// Owner management routes
	owner := rg.Group("/owner/venues")
	owner.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOwner, middleware.RoleAdmin))
	{
		owner.POST("", controller.CreateVenue)                       // POST /api/v1/owner/venues
		owner.GET("", controller.ListOwnerVenues)                    // GET /api/v1/owner/venues
		owner.PUT("/:id", controller.UpdateVenue)                    // PUT /api/v1/owner/venues/:id
		owner.POST("/:id/block", controller.BlockDates)              // POST /api/v1/owner/venues/:id/block
		owner.POST("/:id/unblock", controller.UnblockDates)          // POST /api/v1/owner/venues/:id/unblock
		owner.POST("/:id/manual-bookings", controller.MarkManuallyBooked) // POST /api/v1/owner/venues/:id/manual-bookings
		owner.PUT("/:id/available-dates", controller.SetAvailableDates)   // PUT /api/v1/owner/venues/:id/available-dates
	}
}
