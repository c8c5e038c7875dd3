package postgres

import (
	"context"
	"database/sql"

	"tow/internal/domain"
	"tow/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
//
// Balance mutation happens inside the database: an upsert with
// "balance = wallets.balance + delta" so concurrent trips settling against
// the same driver serialize on the row, never on a value read by the caller.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Get retrieves a driver's wallet, provisioning a zero-balance one if the
// driver has never been seen.
func (r *WalletRepository) Get(ctx context.Context, driverID string) (*domain.Wallet, error) {
	wallet := &domain.Wallet{DriverID: driverID}

	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE driver_id = $1`, driverID,
	).Scan(&wallet.Balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return wallet, nil
		}
		return nil, err
	}

	wallet.Transactions, err = r.listTransactions(ctx, r.db, driverID)
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// ApplyTransaction atomically adjusts the balance and appends the ledger
// entry in one database transaction, then returns the updated snapshot.
func (r *WalletRepository) ApplyTransaction(ctx context.Context, entry *domain.Transaction) (*domain.Wallet, error) {
	delta := entry.Amount
	if entry.Type == domain.TransactionDebit {
		delta = -delta
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	wallet := &domain.Wallet{DriverID: entry.DriverID}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO wallets (driver_id, balance) VALUES ($1, $2)
		ON CONFLICT (driver_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance
		RETURNING balance
	`, entry.DriverID, delta).Scan(&wallet.Balance)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, driver_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.DriverID, entry.Type, entry.Amount, entry.Description, entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	wallet.Transactions, err = r.listTransactions(ctx, tx, entry.DriverID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return wallet, nil
}

// ListAll retrieves every wallet that has at least one transaction.
func (r *WalletRepository) ListAll(ctx context.Context) ([]*domain.Wallet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.driver_id, w.balance
		FROM wallets w
		WHERE EXISTS (SELECT 1 FROM wallet_transactions t WHERE t.driver_id = w.driver_id)
		ORDER BY w.driver_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		var wallet domain.Wallet
		if err := rows.Scan(&wallet.DriverID, &wallet.Balance); err != nil {
			return nil, err
		}
		wallets = append(wallets, &wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, wallet := range wallets {
		wallet.Transactions, err = r.listTransactions(ctx, r.db, wallet.DriverID)
		if err != nil {
			return nil, err
		}
	}

	return wallets, nil
}

func (r *WalletRepository) listTransactions(ctx context.Context, q Querier, driverID string) ([]domain.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, driver_id, type, amount, description, created_at
		FROM wallet_transactions
		WHERE driver_id = $1
		ORDER BY created_at, id
	`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		var entry domain.Transaction
		if err := rows.Scan(&entry.ID, &entry.DriverID, &entry.Type, &entry.Amount, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Ensure WalletRepository implements repository.WalletRepository.
var _ repository.WalletRepository = (*WalletRepository)(nil)
