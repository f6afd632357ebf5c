package payments

import (
	"encoding/json"
	"io"
	"net/http"

	"venuely/internal/bookings"
	"venuely/internal/shared/utils/response"
	"venuely/pkg/logger"

	"github.com/gin-gonic/gin"
)

const webhookSignatureHeader = "X-Webhook-Signature"

type Controller struct {
	bookingService bookings.Service
	verifier       *Verifier
	logger         *logger.Logger
}

func NewController(bookingService bookings.Service, verifier *Verifier, log *logger.Logger) *Controller {
	return &Controller{
		bookingService: bookingService,
		verifier:       verifier,
		logger:         log,
	}
}

// VerifyPayment handles the signed triple returned by the checkout flow
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	var req bookings.VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, response.BindingErrors(err))
		return
	}

	booking, err := c.bookingService.VerifyPayment(ctx.Request.Context(), ctx.GetString("user_id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment verified successfully", booking, nil)
}

type webhookPayload struct {
	Event            string `json:"event"`
	GatewayOrderID   string `json:"order_id"`
	GatewayPaymentID string `json:"payment_id"`
}

// Webhook reconciles gateway events. Unknown or already settled events get
// 200 so the gateway stops redelivering; only transport or storage failures
// return 5xx to trigger a retry.
func (c *Controller) Webhook(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to read webhook body", nil, err.Error())
		return
	}

	signature := ctx.GetHeader(webhookSignatureHeader)
	if !c.verifier.VerifyWebhookBody(body, signature) {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid webhook signature", nil, "signature mismatch")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid webhook payload", nil, err.Error())
		return
	}

	event := bookings.WebhookEvent{
		Event:            payload.Event,
		GatewayOrderID:   payload.GatewayOrderID,
		GatewayPaymentID: payload.GatewayPaymentID,
	}

	if err := c.bookingService.ReconcileWebhook(ctx.Request.Context(), event); err != nil {
		c.logger.ErrorWithContext(ctx.Request.Context(), "webhook reconciliation failed", err, map[string]interface{}{
			"event":    payload.Event,
			"order_id": payload.GatewayOrderID,
		})
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process webhook", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Webhook processed", nil, nil)
}
