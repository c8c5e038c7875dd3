package ws

import (
	"log"
	"sync"

	"tow/internal/domain"
)

// Hub is the room-multiplexed broadcast layer. Each connected client joins
// one or more rooms; publishing to a room fans the message out to every
// member. Writes go through per-client buffered channels: a slow or dead
// client drops frames or gets evicted, and a publish never blocks the state
// transition that triggered it.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	presence map[string]domain.DriverLocation
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		presence: make(map[string]domain.DriverLocation),
	}
}

func (h *Hub) join(c *Client, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*Client]struct{})
		}
		h.rooms[room][c] = struct{}{}
	}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends an event to every member of a room.
func (h *Hub) Publish(room, event string, data any) {
	msg := Message{Event: event, Data: data}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.send(msg)
	}
}

// PublishAll sends an event to every connected client exactly once,
// regardless of room membership.
func (h *Hub) PublishAll(event string, data any) {
	msg := Message{Event: event, Data: data}

	h.mu.RLock()
	seen := make(map[*Client]struct{})
	for _, members := range h.rooms {
		for c := range members {
			seen[c] = struct{}{}
		}
	}
	h.mu.RUnlock()

	for c := range seen {
		c.send(msg)
	}
}

// ToAll implements service.Broadcaster.
func (h *Hub) ToAll(event string, data any) {
	h.PublishAll(event, data)
}

// ToDrivers implements service.Broadcaster.
func (h *Hub) ToDrivers(event string, data any) {
	h.Publish(RoomDrivers, event, data)
}

// ToDriver implements service.Broadcaster.
func (h *Hub) ToDriver(driverID, event string, data any) {
	h.Publish(DriverRoom(driverID), event, data)
}

// ToAdmin implements service.Broadcaster.
func (h *Hub) ToAdmin(event string, data any) {
	h.Publish(RoomAdmin, event, data)
}

// SetPresence records a driver's last known location.
func (h *Hub) SetPresence(loc domain.DriverLocation) {
	h.mu.Lock()
	h.presence[loc.DriverID] = loc
	h.mu.Unlock()
}

// ClearPresence forgets a driver's location.
func (h *Hub) ClearPresence(driverID string) {
	h.mu.Lock()
	delete(h.presence, driverID)
	h.mu.Unlock()
}

// Presence returns a snapshot of all currently known driver locations.
func (h *Hub) Presence() []domain.DriverLocation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	locations := make([]domain.DriverLocation, 0, len(h.presence))
	for _, loc := range h.presence {
		locations = append(locations, loc)
	}
	return locations
}

func (h *Hub) evict(c *Client) {
	h.leave(c)
	c.close()
	log.Printf("ws: client evicted driver=%q", c.driverID)
}
