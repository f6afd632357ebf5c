package payments

import (
	"venuely/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	payments := rg.Group("/payments")
	{
		// The webhook authenticates with its body signature, not a JWT
		payments.POST("/webhook", controller.Webhook) // POST /api/v1/payments/webhook

		verify := payments.Group("")
		verify.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleCustomer, middleware.RoleAdmin))
		{
			verify.POST("/verify", controller.VerifyPayment) // POST /api/v1/payments/verify
		}
	}
}
