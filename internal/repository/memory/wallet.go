package memory

import (
	"context"
	"sort"
	"sync"

	"tow/internal/domain"
	"tow/internal/repository"
)

// WalletRepository is an in-memory implementation of repository.WalletRepository.
// The store lock spans the balance adjustment and the ledger append, so the
// two are observed together, matching the PostgreSQL backend's transaction.
type WalletRepository struct {
	mu      sync.Mutex
	wallets map[string]*domain.Wallet
}

// NewWalletRepository creates a new in-memory wallet repository.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{wallets: make(map[string]*domain.Wallet)}
}

// Get retrieves a driver's wallet, provisioning a zero-balance one if the
// driver has never been seen.
func (r *WalletRepository) Get(ctx context.Context, driverID string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked(driverID), nil
}

// ApplyTransaction atomically adjusts the balance and appends the ledger
// entry, then returns the updated snapshot.
func (r *WalletRepository) ApplyTransaction(ctx context.Context, entry *domain.Transaction) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[entry.DriverID]
	if !ok {
		wallet = &domain.Wallet{DriverID: entry.DriverID}
		r.wallets[entry.DriverID] = wallet
	}

	switch entry.Type {
	case domain.TransactionDebit:
		wallet.Balance -= entry.Amount
	default:
		wallet.Balance += entry.Amount
	}
	wallet.Transactions = append(wallet.Transactions, *entry)

	return r.snapshotLocked(entry.DriverID), nil
}

// ListAll retrieves every wallet that has at least one transaction.
func (r *WalletRepository) ListAll(ctx context.Context) ([]*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var wallets []*domain.Wallet
	for driverID, wallet := range r.wallets {
		if len(wallet.Transactions) == 0 {
			continue
		}
		wallets = append(wallets, r.snapshotLocked(driverID))
	}

	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].DriverID < wallets[j].DriverID
	})

	return wallets, nil
}

func (r *WalletRepository) snapshotLocked(driverID string) *domain.Wallet {
	wallet, ok := r.wallets[driverID]
	if !ok {
		return &domain.Wallet{DriverID: driverID}
	}

	copied := domain.Wallet{
		DriverID:     wallet.DriverID,
		Balance:      wallet.Balance,
		Transactions: make([]domain.Transaction, len(wallet.Transactions)),
	}
	copy(copied.Transactions, wallet.Transactions)

	return &copied
}

// Ensure WalletRepository implements repository.WalletRepository.
var _ repository.WalletRepository = (*WalletRepository)(nil)
