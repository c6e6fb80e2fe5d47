package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format, both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans events out to subscriber groups. Every connection belongs to
// two groups: its classroom group ("classroom:{id}") and its user group
// ("user:{id}") for point-to-point delivery. Group membership is
// process-local ephemeral state, rebuilt on reconnect.
type Hub struct {
	groups map[string]map[*Connection]bool
	mu     sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *groupMessage
}

// Connection is one live subscriber. Send is drained by the write pump;
// publishes that would block are dropped rather than stalling the hub.
type Connection struct {
	ClassroomID string
	UserID      string
	Username    string
	IsTeacher   bool
	Send        chan []byte
}

func (c *Connection) groupNames() []string {
	return []string{ClassroomGroup(c.ClassroomID), UserGroup(c.UserID)}
}

type groupMessage struct {
	group string
	data  []byte
}

// ClassroomGroup names the classroom-wide subscriber group.
func ClassroomGroup(classroomID string) string {
	return "classroom:" + classroomID
}

// UserGroup names a principal's direct-delivery group.
func UserGroup(userID string) string {
	return "user:" + userID
}

// NewHub creates the hub and starts its run loop.
func NewHub() *Hub {
	h := &Hub{
		groups:     make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *groupMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			for _, group := range conn.groupNames() {
				if h.groups[group] == nil {
					h.groups[group] = make(map[*Connection]bool)
				}
				h.groups[group][conn] = true
			}
			h.mu.Unlock()
			log.Printf("[Hub] User %s joined classroom %s", conn.UserID, conn.ClassroomID)

		case conn := <-h.unregister:
			h.mu.Lock()
			removed := false
			for _, group := range conn.groupNames() {
				if members, ok := h.groups[group]; ok && members[conn] {
					delete(members, conn)
					removed = true
					if len(members) == 0 {
						delete(h.groups, group)
					}
				}
			}
			h.mu.Unlock()
			if removed {
				close(conn.Send)
				log.Printf("[Hub] User %s left classroom %s", conn.UserID, conn.ClassroomID)
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.groups[msg.group] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop rather than block the hub on a slow reader.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection to its classroom and user groups.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from both groups and closes its send
// channel.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Publish queues an event for every member of the group. Fire-and-forget:
// delivery is asynchronous and unacknowledged.
func (h *Hub) Publish(group string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s payload: %v", msgType, err)
		return
	}
	frame, _ := json.Marshal(&Message{Type: msgType, Payload: data})
	select {
	case h.broadcast <- &groupMessage{group: group, data: frame}:
	default:
		log.Printf("[Hub] Broadcast buffer full, dropping %s for %s", msgType, group)
	}
}

// PublishToClassroom implements service.Publisher.
func (h *Hub) PublishToClassroom(classroomID string, msgType string, payload interface{}) {
	h.Publish(ClassroomGroup(classroomID), msgType, payload)
}

// PublishToUser implements service.Publisher.
func (h *Hub) PublishToUser(userID string, msgType string, payload interface{}) {
	h.Publish(UserGroup(userID), msgType, payload)
}

// GroupSize reports current membership, for tests and diagnostics.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
