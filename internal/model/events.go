package model

// Broadcast payloads pushed to classroom and user groups. Field names
// follow the wire protocol consumed by classroom clients.

type UserPresenceEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type SeatUpdateEvent struct {
	SeatID      string     `json:"seat_id"`
	Status      SeatStatus `json:"status"`
	StudentID   string     `json:"student_id,omitempty"`
	StudentName string     `json:"student_name,omitempty"`
}

type HandRaiseEvent struct {
	SeatID      string `json:"seat_id"`
	Raised      bool   `json:"raised"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// UpdateRoundEvent announces round lifecycle changes. Action is one of
// "started", "turn_ended" or "completed"; CurrentStudent names the open
// turn's speaker while the round is running.
type UpdateRoundEvent struct {
	RoundID        string `json:"round_id"`
	Action         string `json:"action"`
	CurrentStudent string `json:"current_student,omitempty"`
	RemainingTime  int    `json:"remaining_time,omitempty"`
}

type ChatMessageEvent struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	SenderID  string `json:"sender_id"`
	Recipient string `json:"recipient"`
}

type ContentShareEvent struct {
	SeatID      string      `json:"seat_id"`
	ContentID   string      `json:"content_id"`
	ContentType ContentType `json:"content_type"`
	Link        string      `json:"link,omitempty"`
	Description string      `json:"description,omitempty"`
}
