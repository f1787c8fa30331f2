package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Event is pushed to a single connected user, e.g. a provider dashboard
// learning that an invoice was generated or a settlement confirmed.
type Event struct {
	UserID  uuid.UUID   `json:"-"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Events = make(chan *Event, 64)

// PushEvent queues an event for delivery. Non-blocking: if the hub is
// backed up the event is dropped, dashboards refetch on reconnect anyway.
func PushEvent(userID uuid.UUID, eventType string, payload interface{}) {
	select {
	case Events <- &Event{UserID: userID, Type: eventType, Payload: payload}:
	default:
		log.Printf("⚠️ Event hub full, dropping %s event for user %s", eventType, userID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Events:
			clientsMu.RLock()
			conn, ok := clients[event.UserID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error sending %s event to client %s: %v", event.Type, event.UserID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, event.UserID)
				clientsMu.Unlock()
			}
		}
	}
}
