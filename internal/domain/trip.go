package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending    TripStatus = "PENDING"
	TripStatusAccepted   TripStatus = "ACCEPTED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// ServiceType classifies what kind of job a trip is.
type ServiceType string

const (
	// ServiceTypeTowing is eligible for the built-in fallback rate schedule
	// when no pricing rule matches the vehicle model.
	ServiceTypeTowing   ServiceType = "TOWING"
	ServiceTypeDelivery ServiceType = "DELIVERY"
	ServiceTypeRoadside ServiceType = "ROADSIDE"
)

// AdditionalService is an extra chargeable item attached to a trip
// (winching, extra labour, tolls).
type AdditionalService struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Trip represents a dispatched towing/delivery job in the system.
// DriverID is empty until a driver is assigned or accepts; it is set
// whenever Status is ACCEPTED, IN_PROGRESS or COMPLETED.
type Trip struct {
	ID                 string
	DriverID           string
	CustomerName       string
	CustomerPhone      string
	PickupAddress      string
	PickupLat          float64
	PickupLng          float64
	DropoffAddress     string
	DropoffLat         float64
	DropoffLng         float64
	Status             TripStatus
	Price              int64 // estimate until completion, settled amount after
	ServiceType        ServiceType
	VehicleModel       string
	DistanceKm         float64 // declared at creation
	DistanceTraveledKm float64 // actual, recorded at completion
	AdditionalServices []AdditionalService
	CreatedAt          time.Time
	StartedAt          time.Time
	EndedAt            time.Time
	CancelledAt        time.Time
	CancelReason       string
}

// IsTerminal reports whether the status admits no further transitions.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}
