package payments_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"venuely/internal/payments"
	"venuely/internal/shared/config"

	"github.com/stretchr/testify/assert"
)

func newTestVerifier() *payments.Verifier {
	return payments.NewVerifier(config.PaymentConfig{
		KeySecret:     "checkout-secret",
		WebhookSecret: "webhook-secret",
	})
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestComputeSignatureIsDeterministic(t *testing.T) {
	sig1 := payments.ComputeSignature("order_123", "pay_456", "checkout-secret")
	sig2 := payments.ComputeSignature("order_123", "pay_456", "checkout-secret")

	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, 64) // hex-encoded SHA-256
}

func TestVerifyPaymentSignature(t *testing.T) {
	verifier := newTestVerifier()

	signature := payments.ComputeSignature("order_123", "pay_456", "checkout-secret")
	assert.True(t, verifier.VerifyPaymentSignature("order_123", "pay_456", signature))

	// Any tampered component of the triple must fail
	assert.False(t, verifier.VerifyPaymentSignature("order_999", "pay_456", signature))
	assert.False(t, verifier.VerifyPaymentSignature("order_123", "pay_999", signature))
	assert.False(t, verifier.VerifyPaymentSignature("order_123", "pay_456", "deadbeef"))
	assert.False(t, verifier.VerifyPaymentSignature("order_123", "pay_456", ""))
}

func TestVerifyPaymentSignatureRejectsWrongSecret(t *testing.T) {
	verifier := newTestVerifier()

	// Signed with the webhook secret instead of the checkout key secret
	signature := payments.ComputeSignature("order_123", "pay_456", "webhook-secret")
	assert.False(t, verifier.VerifyPaymentSignature("order_123", "pay_456", signature))
}

func TestVerifyWebhookBody(t *testing.T) {
	verifier := newTestVerifier()
	body := []byte(`{"event":"payment.captured","order_id":"order_123","payment_id":"pay_456"}`)

	valid := signBody(body, "webhook-secret")
	assert.True(t, verifier.VerifyWebhookBody(body, valid))

	tampered := append([]byte{}, body...)
	tampered[0] = '['
	assert.False(t, verifier.VerifyWebhookBody(tampered, valid))

	// The checkout key secret must never validate a webhook body
	assert.False(t, verifier.VerifyWebhookBody(body, signBody(body, "checkout-secret")))
}
