package payments

import (
	"context"
	"fmt"

	"venuely/internal/bookings"

	"github.com/google/uuid"
)

// Service exposes the transaction ledger and implements
// bookings.TransactionStore.
type Service interface {
	RecordTransaction(ctx context.Context, record bookings.TransactionRecord) error
	GetTransaction(ctx context.Context, gatewayOrderID string) (*Transaction, error)
	ListBookingTransactions(ctx context.Context, bookingID uuid.UUID) ([]Transaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RecordTransaction(ctx context.Context, record bookings.TransactionRecord) error {
	tx := &Transaction{
		ID:               uuid.New(),
		BookingID:        record.BookingID,
		GatewayOrderID:   record.GatewayOrderID,
		GatewayPaymentID: record.GatewayPaymentID,
		GatewaySignature: record.GatewaySignature,
		Amount:           record.Amount,
		Currency:         record.Currency,
		Status:           record.Status,
		Source:           record.Source,
	}

	if err := s.repo.UpsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (s *service) GetTransaction(ctx context.Context, gatewayOrderID string) (*Transaction, error) {
	return s.repo.GetByGatewayOrderID(ctx, gatewayOrderID)
}

func (s *service) ListBookingTransactions(ctx context.Context, bookingID uuid.UUID) ([]Transaction, error) {
	return s.repo.ListByBookingID(ctx, bookingID)
}
