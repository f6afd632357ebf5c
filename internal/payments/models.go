package payments

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is the append-mostly ledger of gateway settlements. The
// unique gateway order ID makes replays collapse onto one row; status
// correction happens only via webhook reconciliation.
type Transaction struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID        uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	GatewayOrderID   string    `gorm:"type:varchar(100);unique;not null" json:"gateway_order_id"`
	GatewayPaymentID string    `gorm:"type:varchar(100)" json:"gateway_payment_id"`
	GatewaySignature string    `gorm:"type:varchar(255)" json:"-"`
	Amount           float64   `gorm:"not null" json:"amount"`
	Currency         string    `gorm:"type:varchar(3)" json:"currency"`
	Status           string    `gorm:"type:varchar(20);check:status IN ('created', 'completed', 'failed');default:'created'" json:"status"`
	Source           string    `gorm:"type:varchar(20)" json:"source"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName sets the table name for Transaction
func (Transaction) TableName() string {
	return "payment_transactions"
}

func (t *Transaction) IsCompleted() bool {
	return t.Status == "completed"
}
