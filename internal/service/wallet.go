package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tow/internal/domain"
	"tow/internal/repository"
	"tow/internal/ws"
)

// WalletService owns the per-driver ledger. Credits and debits go through
// the repository's atomic increment, and every successful mutation
// broadcasts the full updated snapshot to the driver's private room.
type WalletService struct {
	walletRepo  repository.WalletRepository
	broadcaster Broadcaster
}

// NewWalletService creates a new WalletService. broadcaster may be nil.
func NewWalletService(walletRepo repository.WalletRepository, broadcaster Broadcaster) *WalletService {
	return &WalletService{walletRepo: walletRepo, broadcaster: broadcaster}
}

// Summary retrieves a driver's balance and full transaction history.
// Unknown drivers get an empty wallet, never an error.
func (s *WalletService) Summary(ctx context.Context, driverID string) (*domain.Wallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.walletRepo.Get(ctx, driverID)
}

// Credit adds amount to the driver's balance and appends a CREDIT entry.
func (s *WalletService) Credit(ctx context.Context, driverID string, amount int64, description string) (*domain.Wallet, error) {
	return s.apply(ctx, driverID, domain.TransactionCredit, amount, description)
}

// Debit subtracts amount from the driver's balance and appends a DEBIT
// entry. The balance is allowed to go negative: commission debits apply
// unconditionally, and callers needing a positive balance must check it
// before the action that leads to the debit, not here.
func (s *WalletService) Debit(ctx context.Context, driverID string, amount int64, description string) (*domain.Wallet, error) {
	return s.apply(ctx, driverID, domain.TransactionDebit, amount, description)
}

// Recharge is a top-up credit tagged with the payment method.
func (s *WalletService) Recharge(ctx context.Context, driverID string, amount int64, method string) (*domain.Wallet, error) {
	if method == "" {
		method = "manual"
	}

	return s.Credit(ctx, driverID, amount, fmt.Sprintf("Wallet top-up via %s", method))
}

func (s *WalletService) apply(ctx context.Context, driverID string, txType domain.TransactionType, amount int64, description string) (*domain.Wallet, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.walletRepo.ApplyTransaction(ctx, &domain.Transaction{
		ID:          uuid.New().String(),
		DriverID:    driverID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToDriver(driverID, ws.EventWalletUpdated, NewWalletEvent(wallet))
	}

	return wallet, nil
}
