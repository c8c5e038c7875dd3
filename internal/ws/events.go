package ws

// Wire event names. These are the public contract with driver and admin
// clients; delivery is best-effort at-most-once, so clients reconcile via
// the REST full-state endpoints rather than assuming every event arrives.
const (
	EventNewJobRequest         = "newJobRequest"
	EventRequestAssigned       = "requestAssigned"
	EventDriverAccepted        = "driverAccepted"
	EventJobTaken              = "jobTaken"
	EventTripUpdated           = "tripUpdated"
	EventTripStarted           = "tripStarted"
	EventTripCompleted         = "tripCompleted"
	EventTripDeleted           = "tripDeleted"
	EventJobCancelled          = "jobCancelled"
	EventWalletUpdated         = "walletUpdated"
	EventDriverLocationUpdated = "driverLocationUpdated"
	EventAllDriverLocations    = "allDriverLocations"
	EventDriverStatusUpdated   = "driverStatusUpdated"
)

// Message is the JSON envelope for every frame in both directions.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Room names. Every driver additionally has a private room, see DriverRoom.
const (
	RoomDrivers = "drivers"
	RoomAdmin   = "admin"
)

// DriverRoom returns the private room name for a driver.
func DriverRoom(driverID string) string {
	return "driver:" + driverID
}
