package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tow/internal/domain"
	"tow/internal/service"
	"tow/internal/ws"
)

// ──────────────────────────────────────────────
// 3. ACCEPT RACE
// ──────────────────────────────────────────────

func TestAcceptRace_ExactlyOneWinner(t *testing.T) {
	t.Parallel()

	const contenders = 32

	e := newEngine(t)
	for i := 0; i < contenders; i++ {
		e.addDriver(t, fmt.Sprintf("d%d", i), 100_000)
	}

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)

	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = e.tripService.Accept(context.Background(), trip.ID, fmt.Sprintf("d%d", i))
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrTripTaken):
			// expected for losers
		default:
			t.Errorf("driver d%d got unexpected error: %v", i, err)
		}
	}

	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	stored, err := e.trips.GetByID(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.TripStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", stored.Status)
	}
	if stored.DriverID == "" {
		t.Error("expected the winning driver to be recorded")
	}

	// One winner, one retraction to the competing drivers.
	if got := e.broadcaster.CountEvent(ws.EventDriverAccepted); got != 1 {
		t.Errorf("driverAccepted broadcast %d times, want 1", got)
	}
	if got := e.broadcaster.CountEvent(ws.EventJobTaken); got != 1 {
		t.Errorf("jobTaken broadcast %d times, want 1", got)
	}
}

func TestAcceptRace_RejectedBalanceNeverBlocksOthers(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "broke", 0)
	e.addDriver(t, "funded", 100_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.tripService.Accept(context.Background(), trip.ID, "broke"); !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if _, err := e.tripService.Accept(context.Background(), trip.ID, "funded"); err != nil {
		t.Fatalf("funded driver should win after a rejected accept: %v", err)
	}
}
