package domain

import "time"

// TransactionType represents the direction of a wallet transaction.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Transaction is one immutable entry in a driver's wallet ledger.
// Amount is always non-negative; direction is carried by Type.
type Transaction struct {
	ID          string
	DriverID    string
	Type        TransactionType
	Amount      int64
	Description string
	CreatedAt   time.Time
}

// Wallet is a driver's running balance plus the full append-only
// transaction history. The balance may go negative: commission debits
// are applied unconditionally at trip completion.
type Wallet struct {
	DriverID     string
	Balance      int64
	Transactions []Transaction
}
