package domain

// DriverStatus represents the current availability of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
)

// Driver is the minimal driver profile the dispatch core needs.
// Full profile/document management lives in an external service.
type Driver struct {
	ID          string
	Name        string
	Phone       string
	VehicleType string // feeds settlement pricing when a trip has no vehicle model
	Status      DriverStatus
}

// DriverLocation is a driver's last known position. Presence is
// ephemeral: it exists only while the driver is connected.
type DriverLocation struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}
