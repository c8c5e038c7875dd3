package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const sendBuffer = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DriverEventHandler receives inbound messages from driver connections.
// Implementations must not block; failures are logged, never surfaced to
// the connection.
type DriverEventHandler interface {
	HandleLocationUpdate(ctx context.Context, driverID string, lat, lng float64)
	HandleStatusUpdate(ctx context.Context, driverID, status string)
	HandleDisconnect(ctx context.Context, driverID string)
}

// Client is one websocket connection attached to the hub.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	driverID string // empty for admin clients

	mu     sync.Mutex
	out    chan Message
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, driverID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		driverID: driverID,
		out:      make(chan Message, sendBuffer),
	}
}

// send queues a message for delivery. A full buffer drops the frame:
// delivery here is at-most-once and clients re-sync via REST pulls.
func (c *Client) send(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- msg:
	default:
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) writePump() {
	for msg := range c.out {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.hub.evict(c)
			return
		}
	}
}

// locationPayload is the inbound body of a driverLocationUpdated frame.
type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// statusPayload is the inbound body of a driverStatusUpdated frame.
type statusPayload struct {
	Status string `json:"status"`
}

func (c *Client) readPump(handler DriverEventHandler) {
	defer func() {
		c.hub.evict(c)
		if c.driverID != "" && handler != nil {
			handler.HandleDisconnect(context.Background(), c.driverID)
		}
	}()

	for {
		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if c.driverID == "" || handler == nil {
			continue
		}

		switch msg.Event {
		case EventDriverLocationUpdated:
			var p locationPayload
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				log.Printf("ws: bad location payload from driver %s: %v", c.driverID, err)
				continue
			}
			handler.HandleLocationUpdate(context.Background(), c.driverID, p.Lat, p.Lng)
		case EventDriverStatusUpdated:
			var p statusPayload
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				log.Printf("ws: bad status payload from driver %s: %v", c.driverID, err)
				continue
			}
			handler.HandleStatusUpdate(context.Background(), c.driverID, p.Status)
		}
	}
}

// ServeDriver upgrades the request and attaches a driver connection: it
// joins the shared drivers room plus the driver's private room, receives
// the full presence snapshot, and feeds inbound frames to handler.
func (h *Hub) ServeDriver(w http.ResponseWriter, r *http.Request, driverID string, handler DriverEventHandler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := newClient(h, conn, driverID)
	h.join(c, RoomDrivers, DriverRoom(driverID))
	c.send(Message{Event: EventAllDriverLocations, Data: h.Presence()})

	go c.writePump()
	go c.readPump(handler)
}

// ServeAdmin upgrades the request and attaches an admin connection.
func (h *Hub) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := newClient(h, conn, "")
	h.join(c, RoomAdmin)
	c.send(Message{Event: EventAllDriverLocations, Data: h.Presence()})

	go c.writePump()
	go c.readPump(nil)
}
