package model

import "time"

// UpdateRound is a structured speaking rotation across occupied seats.
// At most one round per classroom is active (EndedAt == nil) at a time.
type UpdateRound struct {
	ID              string     `json:"id" bson:"_id"`
	ClassroomID     string     `json:"classroomId" bson:"classroomId"`
	DurationSeconds int        `json:"durationSeconds" bson:"durationSeconds"`
	StartedAt       time.Time  `json:"startedAt" bson:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

func (r *UpdateRound) Active() bool {
	return r.EndedAt == nil
}

// UpdateTurn is one seat's slot within a round. Exactly one turn per
// active round is open (EndedAt == nil); the next turn is created when
// the current one ends.
type UpdateTurn struct {
	ID          string     `json:"id" bson:"_id"`
	RoundID     string     `json:"roundId" bson:"roundId"`
	ClassroomID string     `json:"classroomId" bson:"classroomId"`
	SeatID      string     `json:"seatId" bson:"seatId"`
	StudentID   string     `json:"studentId" bson:"studentId"`
	StudentName string     `json:"studentName" bson:"studentName"`
	StartedAt   time.Time  `json:"startedAt" bson:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

func (t *UpdateTurn) Open() bool {
	return t.EndedAt == nil
}

// TurnResult is returned by ending a turn: either the next turn, or the
// completed round summary once every seat has spoken.
type TurnResult struct {
	Completed bool         `json:"completed"`
	NextTurn  *UpdateTurn  `json:"nextTurn,omitempty"`
	Round     *UpdateRound `json:"round,omitempty"`
}
