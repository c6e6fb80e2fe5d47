package model

import "time"

type SeatStatus string

const (
	SeatEmpty      SeatStatus = "empty"
	SeatOccupied   SeatStatus = "occupied"
	SeatHandRaised SeatStatus = "hand_raised"
	SeatSpeaking   SeatStatus = "speaking"
)

// Classroom is the live container for a session, created lazily on first
// access. Seats are created with it, one per grid cell.
type Classroom struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Rows      int       `json:"rows" bson:"rows"`
	Columns   int       `json:"columns" bson:"columns"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Seat struct {
	ID          string     `json:"id" bson:"_id"`
	ClassroomID string     `json:"classroomId" bson:"classroomId"`
	Row         int        `json:"row" bson:"row"`
	Column      int        `json:"column" bson:"column"`
	Status      SeatStatus `json:"status" bson:"status"`
	StudentID   string     `json:"studentId,omitempty" bson:"studentId,omitempty"`
	StudentName string     `json:"studentName,omitempty" bson:"studentName,omitempty"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty" bson:"assignedAt,omitempty"`
}

// Occupied reports whether the seat currently has an occupant.
func (s *Seat) Occupied() bool {
	return s.StudentID != ""
}

// ClassroomContext is the resolved entity chain used for authorization:
// which session the classroom belongs to, which course that session is
// part of, and who teaches it.
type ClassroomContext struct {
	ClassroomID string `json:"classroomId"`
	SessionID   string `json:"sessionId"`
	CourseID    string `json:"courseId"`
	TeacherID   string `json:"teacherId"`
}

// ClassroomState is the full snapshot returned by the state endpoint.
type ClassroomState struct {
	Classroom   *Classroom   `json:"classroom"`
	Seats       []*Seat      `json:"seats"`
	UserSeat    *Seat        `json:"userSeat,omitempty"`
	IsTeacher   bool         `json:"isTeacher"`
	RaisedHands []*HandRaise `json:"raisedHands"`
	ActiveRound *UpdateRound `json:"activeRound,omitempty"`
	CurrentTurn *UpdateTurn  `json:"currentTurn,omitempty"`
}

type Participant struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
