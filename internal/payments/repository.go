package payments

import (
	"context"
	"errors"
	"time"

	"venuely/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTransactionNotFound = apperr.New(apperr.KindNotFound, "transaction not found")

type Repository interface {
	UpsertTransaction(ctx context.Context, tx *Transaction) error
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Transaction, error)
	ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Transaction, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UpsertTransaction inserts the settlement row, or corrects the status of
// an existing row for the same gateway order. Redelivered webhooks and
// verify replays collapse here instead of duplicating ledger entries.
func (r *repository) UpsertTransaction(ctx context.Context, tx *Transaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gateway_order_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"gateway_payment_id": tx.GatewayPaymentID,
				"status":             tx.Status,
				"source":             tx.Source,
				"updated_at":         time.Now(),
			}),
		}).
		Create(tx).Error
}

func (r *repository) GetByGatewayOrderID(ctx context.Context, orderID string) (*Transaction, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *repository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Transaction, error) {
	var matched []Transaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&matched).Error
	return matched, err
}
