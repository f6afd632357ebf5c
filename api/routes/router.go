// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"venuely/internal/bookings"
	"venuely/internal/geocode"
	"venuely/internal/notifications"
	"venuely/internal/payments"
	"venuely/internal/shared/config"
	"venuely/internal/shared/database"
	"venuely/internal/venues"
	"venuely/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier bookings.Notifier
	logger   *logger.Logger
}

// NewRouter creates a new router instance. notifier may be nil when the
// notification pipeline is unavailable; booking operations still work.
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.Service) *Router {
	r := &Router{
		config: cfg,
		db:     db,
		logger: logger.GetDefault(),
	}
	if notifier != nil {
		r.notifier = notifier
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Shared venue layer
		venueRepo := venues.NewRepository(r.db.GetPostgreSQL())
		calendarService := venues.NewCalendarService(venueRepo, r.logger)
		geocoder := geocode.NewClient(geocode.Config{
			BaseURL: r.config.Geocoder.BaseURL,
			Timeout: r.config.Geocoder.Timeout,
		})
		searchService := venues.NewSearchService(venueRepo, geocoder, r.config.Search, r.logger)
		venueService := venues.NewService(venueRepo, calendarService, searchService, geocoder, r.config.Redis.CacheTTL, r.logger)
		venueController := venues.NewController(venueService)
		venues.SetupVenueRoutes(api, venueController)

		// Payment gate
		verifier := payments.NewVerifier(r.config.Payment)
		gateway := payments.NewHTTPGateway(r.config.Payment)
		paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
		paymentService := payments.NewService(paymentRepo)

		// Booking state machine
		bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
		locker := bookings.NewRedisLocker(r.db.GetRedisClient(), r.config.Redis.BookingLockTTL)
		bookingService := bookings.NewService(
			bookingRepo,
			venueRepo,
			calendarService,
			gateway,
			verifier,
			paymentService,
			r.notifier,
			locker,
			r.logger,
			r.config.Payment.Currency,
			r.config.Payment.KeyID,
		)
		bookingController := bookings.NewController(bookingService)
		bookings.SetupBookingRoutes(api, bookingController)

		paymentController := payments.NewController(bookingService, verifier, r.logger)
		payments.SetupPaymentRoutes(api, paymentController)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "venuely-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "venuely-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
