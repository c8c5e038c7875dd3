package tests

import (
	"context"
	"sync"

	"tow/internal/domain"
	"tow/internal/service"
)

// ──────────────────────────────────────────────
// RECORDING BROADCASTER
// ──────────────────────────────────────────────

// BroadcastRecord is one captured broadcast call.
type BroadcastRecord struct {
	Room  string // "*" for ToAll
	Event string
	Data  any
}

// RecordingBroadcaster is a service.Broadcaster that captures every call
// for later assertions.
type RecordingBroadcaster struct {
	mu      sync.Mutex
	records []BroadcastRecord
}

// NewRecordingBroadcaster creates a new recording broadcaster.
func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

func (b *RecordingBroadcaster) record(room, event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, BroadcastRecord{Room: room, Event: event, Data: data})
}

func (b *RecordingBroadcaster) ToAll(event string, data any) { b.record("*", event, data) }

func (b *RecordingBroadcaster) ToDrivers(event string, data any) { b.record("drivers", event, data) }

func (b *RecordingBroadcaster) ToDriver(driverID, event string, data any) {
	b.record("driver:"+driverID, event, data)
}

func (b *RecordingBroadcaster) ToAdmin(event string, data any) { b.record("admin", event, data) }

// Records returns a copy of everything broadcast so far.
func (b *RecordingBroadcaster) Records() []BroadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BroadcastRecord, len(b.records))
	copy(out, b.records)
	return out
}

// CountEvent returns how many times an event was broadcast to any room.
func (b *RecordingBroadcaster) CountEvent(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.records {
		if r.Event == event {
			n++
		}
	}
	return n
}

// LastEvent returns the most recent record for an event, or nil.
func (b *RecordingBroadcaster) LastEvent(event string) *BroadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.records) - 1; i >= 0; i-- {
		if b.records[i].Event == event {
			r := b.records[i]
			return &r
		}
	}
	return nil
}

// Ensure RecordingBroadcaster implements service.Broadcaster.
var _ service.Broadcaster = (*RecordingBroadcaster)(nil)

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of the redis location mirror.
type MockLocationStore struct {
	mu        sync.Mutex
	locations map[string]domain.DriverLocation

	UpdateLocationCallCount int
	RemoveLocationCallCount int

	// Error injection
	UpdateLocationError error
	ListLocationsError  error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]domain.DriverLocation)}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateLocationCallCount++
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.locations[driverID] = domain.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveLocationCallCount++
	delete(m.locations, driverID)
	return nil
}

func (m *MockLocationStore) ListLocations(ctx context.Context) ([]domain.DriverLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListLocationsError != nil {
		return nil, m.ListLocationsError
	}
	out := make([]domain.DriverLocation, 0, len(m.locations))
	for _, loc := range m.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]domain.DriverLocation, error) {
	return m.ListLocations(ctx)
}

// HasLocation reports whether a driver's location is currently stored.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.locations[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK RULE CACHE
// ──────────────────────────────────────────────

// MockRuleCache is a mock implementation of the pricing rule cache.
type MockRuleCache struct {
	mu    sync.Mutex
	rules map[string]*domain.PricingRule

	GetCallCount        int
	SetCallCount        int
	InvalidateCallCount int
}

// NewMockRuleCache creates a new mock rule cache.
func NewMockRuleCache() *MockRuleCache {
	return &MockRuleCache{rules: make(map[string]*domain.PricingRule)}
}

func (m *MockRuleCache) Get(ctx context.Context, vehicleType string) (*domain.PricingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCallCount++
	rule, ok := m.rules[vehicleType]
	if !ok {
		return nil, nil
	}
	copied := *rule
	return &copied, nil
}

func (m *MockRuleCache) Set(ctx context.Context, rule *domain.PricingRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCallCount++
	copied := *rule
	m.rules[rule.VehicleType] = &copied
	return nil
}

func (m *MockRuleCache) Invalidate(ctx context.Context, vehicleType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateCallCount++
	delete(m.rules, vehicleType)
	return nil
}

// Cached reports whether a vehicle type currently has a cache entry.
func (m *MockRuleCache) Cached(vehicleType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rules[vehicleType]
	return ok
}
