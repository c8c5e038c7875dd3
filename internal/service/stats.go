package service

import (
	"context"
	"sort"
	"time"

	"tow/internal/domain"
	"tow/internal/repository"
)

// StatsService derives revenue and wallet figures on demand by replaying
// trips and ledgers. Nothing is maintained incrementally, so the numbers
// are always consistent with the underlying records at read time.
type StatsService struct {
	tripRepo   repository.TripRepository
	walletRepo repository.WalletRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(tripRepo repository.TripRepository, walletRepo repository.WalletRepository) *StatsService {
	return &StatsService{tripRepo: tripRepo, walletRepo: walletRepo}
}

// Stats summarizes money movement. TotalRevenue, TotalDeposits and
// TotalDebits are flows scoped to the requested range; TotalBalance is the
// unfiltered snapshot sum over all wallets — a structurally different
// quantity, never range-scoped.
type Stats struct {
	TotalRevenue   int64
	TotalDeposits  int64
	TotalDebits    int64
	TotalBalance   int64
	CompletedTrips int
}

// Report is the result of a transaction report query.
type Report struct {
	Stats        Stats
	Transactions []domain.Transaction
}

// TransactionReport scans completed trips and every non-empty wallet ledger
// and aggregates them over [from, to). Zero bounds are open-ended.
func (s *StatsService) TransactionReport(ctx context.Context, from, to time.Time) (*Report, error) {
	trips, err := s.tripRepo.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, trip := range trips {
		report.Stats.TotalRevenue += trip.Price
	}
	report.Stats.CompletedTrips = len(trips)

	wallets, err := s.walletRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, wallet := range wallets {
		report.Stats.TotalBalance += wallet.Balance

		for _, tx := range wallet.Transactions {
			if !inRange(tx.CreatedAt, from, to) {
				continue
			}
			switch tx.Type {
			case domain.TransactionCredit:
				report.Stats.TotalDeposits += tx.Amount
			case domain.TransactionDebit:
				report.Stats.TotalDebits += tx.Amount
			}
			report.Transactions = append(report.Transactions, tx)
		}
	}

	sort.Slice(report.Transactions, func(i, j int) bool {
		return report.Transactions[i].CreatedAt.Before(report.Transactions[j].CreatedAt)
	})

	return report, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
