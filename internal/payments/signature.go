package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"venuely/internal/shared/config"
)

// ComputeSignature returns the hex HMAC-SHA256 over "orderID|paymentID".
// This is the contract the gateway signs checkout results with.
func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks gateway signatures. The checkout key secret and the
// webhook secret are distinct credentials and never interchangeable.
type Verifier struct {
	keySecret     string
	webhookSecret string
}

func NewVerifier(cfg config.PaymentConfig) *Verifier {
	return &Verifier{
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}
}

// VerifyPaymentSignature checks the signed (order, payment, signature)
// triple returned by the checkout flow. Comparison is constant-time.
func (v *Verifier) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	expected := ComputeSignature(orderID, paymentID, v.keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookBody checks the signature header of a raw webhook payload
func (v *Verifier) VerifyWebhookBody(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(v.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
