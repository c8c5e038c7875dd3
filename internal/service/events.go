package service

import (
	"tow/internal/domain"
)

const eventTimeLayout = "2006-01-02T15:04:05Z07:00"

// TripEvent is the trip payload carried by lifecycle broadcasts.
type TripEvent struct {
	TripID         string                     `json:"trip_id"`
	DriverID       string                     `json:"driver_id,omitempty"`
	CustomerName   string                     `json:"customer_name"`
	CustomerPhone  string                     `json:"customer_phone"`
	PickupAddress  string                     `json:"pickup_address"`
	PickupLat      float64                    `json:"pickup_lat"`
	PickupLng      float64                    `json:"pickup_lng"`
	DropoffAddress string                     `json:"dropoff_address"`
	DropoffLat     float64                    `json:"dropoff_lat"`
	DropoffLng     float64                    `json:"dropoff_lng"`
	Status         string                     `json:"status"`
	Price          int64                      `json:"price"`
	ServiceType    string                     `json:"service_type"`
	VehicleModel   string                     `json:"vehicle_model"`
	DistanceKm     float64                    `json:"distance_km"`
	Extras         []domain.AdditionalService `json:"additional_services,omitempty"`
	CreatedAt      string                     `json:"created_at"`
}

// NewTripEvent builds the broadcast payload for a trip.
func NewTripEvent(trip *domain.Trip) TripEvent {
	return TripEvent{
		TripID:         trip.ID,
		DriverID:       trip.DriverID,
		CustomerName:   trip.CustomerName,
		CustomerPhone:  trip.CustomerPhone,
		PickupAddress:  trip.PickupAddress,
		PickupLat:      trip.PickupLat,
		PickupLng:      trip.PickupLng,
		DropoffAddress: trip.DropoffAddress,
		DropoffLat:     trip.DropoffLat,
		DropoffLng:     trip.DropoffLng,
		Status:         string(trip.Status),
		Price:          trip.Price,
		ServiceType:    string(trip.ServiceType),
		VehicleModel:   trip.VehicleModel,
		DistanceKm:     trip.DistanceKm,
		Extras:         trip.AdditionalServices,
		CreatedAt:      trip.CreatedAt.Format(eventTimeLayout),
	}
}

// TransactionEvent is one ledger entry inside a wallet broadcast.
type TransactionEvent struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// WalletEvent is the full wallet snapshot broadcast after every ledger
// mutation: current balance plus complete history, not a delta.
type WalletEvent struct {
	DriverID     string             `json:"driver_id"`
	Balance      int64              `json:"balance"`
	Transactions []TransactionEvent `json:"transactions"`
}

// NewWalletEvent builds the broadcast payload for a wallet snapshot.
func NewWalletEvent(wallet *domain.Wallet) WalletEvent {
	event := WalletEvent{
		DriverID:     wallet.DriverID,
		Balance:      wallet.Balance,
		Transactions: make([]TransactionEvent, 0, len(wallet.Transactions)),
	}
	for _, tx := range wallet.Transactions {
		event.Transactions = append(event.Transactions, TransactionEvent{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt.Format(eventTimeLayout),
		})
	}
	return event
}

// LatLng is a nullable coordinate pair inside a location broadcast.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationEvent is the payload of driverLocationUpdated. A nil Location
// means the driver went offline.
type LocationEvent struct {
	DriverID string  `json:"driver_id"`
	Location *LatLng `json:"location"`
}

// JobTakenEvent tells competing drivers an offer is stale.
type JobTakenEvent struct {
	TripID   string `json:"trip_id"`
	DriverID string `json:"driver_id"`
}

// StatusEvent is the payload of driverStatusUpdated.
type StatusEvent struct {
	DriverID string `json:"driver_id"`
	Status   string `json:"status"`
}

// tripRef identifies a trip in deletion broadcasts.
type tripRef struct {
	TripID string `json:"trip_id"`
}
