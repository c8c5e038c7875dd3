package repository

import (
	"context"

	"tow/internal/domain"
)

// WalletRepository defines the persistence operations for driver wallets.
//
// A wallet that has never been touched is provisioned with a zero balance
// and an empty ledger on first access; missing wallets are never an error.
type WalletRepository interface {
	// Get retrieves a driver's wallet snapshot: balance plus full history,
	// oldest transaction first.
	Get(ctx context.Context, driverID string) (*domain.Wallet, error)

	// ApplyTransaction atomically adjusts the balance (+= for CREDIT,
	// -= for DEBIT) and appends the ledger entry, then returns the updated
	// snapshot. The balance mutation must be an atomic increment at the
	// store, never a write of a previously read value, so concurrent
	// completions touching the same wallet lose no updates.
	ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Wallet, error)

	// ListAll retrieves every wallet that has at least one transaction,
	// with full histories.
	ListAll(ctx context.Context) ([]*domain.Wallet, error)
}
