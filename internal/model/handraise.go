package model

import "time"

// HandRaise is a request-to-speak record tied to a seat. Records are
// append-only: lowering a hand closes the record, it is never deleted.
// At most one active record (LoweredAt == nil) exists per seat.
type HandRaise struct {
	ID           string     `json:"id" bson:"_id"`
	SeatID       string     `json:"seatId" bson:"seatId"`
	ClassroomID  string     `json:"classroomId" bson:"classroomId"`
	StudentID    string     `json:"studentId" bson:"studentId"`
	StudentName  string     `json:"studentName" bson:"studentName"`
	RaisedAt     time.Time  `json:"raisedAt" bson:"raisedAt"`
	Acknowledged bool       `json:"acknowledged" bson:"acknowledged"`
	LoweredAt    *time.Time `json:"loweredAt,omitempty" bson:"loweredAt,omitempty"`
}

// Active reports whether the hand is still up.
func (h *HandRaise) Active() bool {
	return h.LoweredAt == nil
}

// HandAction is the outcome of a raise/lower request.
type HandAction string

const (
	HandActionRaised    HandAction = "raised"
	HandActionLowered   HandAction = "lowered"
	HandActionUnchanged HandAction = "unchanged"
)
