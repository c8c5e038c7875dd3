package service

import "tow/internal/domain"

// Broadcaster is the outbound fan-out contract. Every call is
// fire-and-forget: implementations must never block the caller or report
// delivery failures back to it, because broadcasts are decoupled from the
// state mutations that trigger them.
type Broadcaster interface {
	// ToAll publishes to every connected client.
	ToAll(event string, data any)

	// ToDrivers publishes to the shared drivers room.
	ToDrivers(event string, data any)

	// ToDriver publishes to one driver's private room.
	ToDriver(driverID, event string, data any)

	// ToAdmin publishes to the admin room.
	ToAdmin(event string, data any)
}

// PresenceTracker holds ephemeral per-driver location state, scoped to
// process uptime.
type PresenceTracker interface {
	SetPresence(loc domain.DriverLocation)
	ClearPresence(driverID string)
	Presence() []domain.DriverLocation
}
