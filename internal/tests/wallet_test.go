package tests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"tow/internal/domain"
	"tow/internal/repository/memory"
	"tow/internal/service"
	"tow/internal/ws"
)

// ──────────────────────────────────────────────
// 4. WALLET LEDGER
// ──────────────────────────────────────────────

func TestWallet_UnknownDriver_EmptyNotError(t *testing.T) {
	t.Parallel()

	svc := service.NewWalletService(memory.NewWalletRepository(), nil)

	wallet, err := svc.Summary(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 0 {
		t.Errorf("balance = %d, want 0", wallet.Balance)
	}
	if len(wallet.Transactions) != 0 {
		t.Errorf("transactions = %d, want none", len(wallet.Transactions))
	}
}

func TestWallet_RechargeTagsMethod(t *testing.T) {
	t.Parallel()

	svc := service.NewWalletService(memory.NewWalletRepository(), nil)

	wallet, err := svc.Recharge(context.Background(), "d1", 50_000, "telebirr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 50_000 {
		t.Errorf("balance = %d, want 50000", wallet.Balance)
	}
	if len(wallet.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(wallet.Transactions))
	}

	tx := wallet.Transactions[0]
	if tx.Type != domain.TransactionCredit {
		t.Errorf("type = %s, want CREDIT", tx.Type)
	}
	if !strings.Contains(tx.Description, "telebirr") {
		t.Errorf("description %q should name the payment method", tx.Description)
	}
}

func TestWallet_InvalidAmounts_Rejected(t *testing.T) {
	t.Parallel()

	svc := service.NewWalletService(memory.NewWalletRepository(), nil)

	for _, amount := range []int64{0, -1, -50_000} {
		if _, err := svc.Credit(context.Background(), "d1", amount, "bad"); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("Credit(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := svc.Debit(context.Background(), "d1", amount, "bad"); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("Debit(%d): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestWallet_DebitMayGoNegative(t *testing.T) {
	t.Parallel()

	svc := service.NewWalletService(memory.NewWalletRepository(), nil)

	if _, err := svc.Credit(context.Background(), "d1", 10_000, "seed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wallet, err := svc.Debit(context.Background(), "d1", 25_000, "commission")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != -15_000 {
		t.Errorf("balance = %d, want -15000", wallet.Balance)
	}
}

func TestWallet_BalanceMatchesLedgerUnderConcurrency(t *testing.T) {
	t.Parallel()

	const (
		workers    = 16
		iterations = 50
	)

	svc := service.NewWalletService(memory.NewWalletRepository(), nil)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if w%2 == 0 {
					if _, err := svc.Credit(context.Background(), "d1", 300, "load"); err != nil {
						t.Errorf("credit failed: %v", err)
						return
					}
				} else {
					if _, err := svc.Debit(context.Background(), "d1", 100, "load"); err != nil {
						t.Errorf("debit failed: %v", err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	wallet, err := svc.Summary(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fromLedger int64
	for _, tx := range wallet.Transactions {
		switch tx.Type {
		case domain.TransactionCredit:
			fromLedger += tx.Amount
		case domain.TransactionDebit:
			fromLedger -= tx.Amount
		}
	}

	if wallet.Balance != fromLedger {
		t.Errorf("balance %d diverged from ledger sum %d", wallet.Balance, fromLedger)
	}
	if got, want := len(wallet.Transactions), workers*iterations; got != want {
		t.Errorf("ledger entries = %d, want %d", got, want)
	}
}

func TestWallet_MutationBroadcastsSnapshotToDriverRoom(t *testing.T) {
	t.Parallel()

	broadcaster := NewRecordingBroadcaster()
	svc := service.NewWalletService(memory.NewWalletRepository(), broadcaster)

	if _, err := svc.Recharge(context.Background(), "d1", 40_000, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := broadcaster.LastEvent(ws.EventWalletUpdated)
	if rec == nil {
		t.Fatal("expected a walletUpdated broadcast")
	}
	if rec.Room != "driver:d1" {
		t.Errorf("walletUpdated went to %q, want the driver's private room", rec.Room)
	}

	event, ok := rec.Data.(service.WalletEvent)
	if !ok {
		t.Fatalf("payload is %T, want service.WalletEvent", rec.Data)
	}
	if event.Balance != 40_000 {
		t.Errorf("broadcast balance = %d, want 40000", event.Balance)
	}
	if len(event.Transactions) != 1 {
		t.Errorf("broadcast carries %d transactions, want the full history (1)", len(event.Transactions))
	}
}
