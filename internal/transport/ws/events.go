package ws

import "encoding/json"

// EventType is the closed set of client-originated event kinds. Frames
// with any other type are dropped.
type EventType string

const (
	EventSeatUpdate   EventType = "seat_update"
	EventHandRaise    EventType = "hand_raise"
	EventUpdateRound  EventType = "update_round"
	EventChatMessage  EventType = "chat_message"
	EventContentShare EventType = "content_share"
)

// Envelope is the parsed client frame before payload dispatch.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type SeatUpdatePayload struct {
	SeatID string `json:"seat_id"`
}

type HandRaisePayload struct {
	SeatID string `json:"seat_id"`
	Raised *bool  `json:"raised"`
}

// UpdateRoundPayload controls rounds over the socket: Action "start"
// opens a round, "end_turn" closes the turn named by TurnID.
type UpdateRoundPayload struct {
	Action          string   `json:"action"`
	DurationSeconds int      `json:"duration_seconds"`
	Seats           []string `json:"seats"`
	TurnID          string   `json:"turn_id"`
}

type ChatMessagePayload struct {
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
}

type ContentSharePayload struct {
	SeatID      string `json:"seat_id"`
	ContentType string `json:"content_type"`
	Link        string `json:"link"`
	Description string `json:"description"`
}
