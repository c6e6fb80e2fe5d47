// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back the test suites and preserve the same
// compare-and-set semantics as the MongoDB implementations.
package memory

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// ClassroomRepo ---------------------------------------------------------

type ClassroomRepo struct {
	mu         sync.RWMutex
	classrooms map[string]*model.Classroom
}

func NewClassroomRepo() *ClassroomRepo {
	return &ClassroomRepo{classrooms: make(map[string]*model.Classroom)}
}

func (r *ClassroomRepo) Create(ctx context.Context, classroom *model.Classroom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *classroom
	r.classrooms[c.ID] = &c
	return nil
}

func (r *ClassroomRepo) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.classrooms[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *ClassroomRepo) GetBySession(ctx context.Context, sessionID string) (*model.Classroom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.classrooms {
		if c.SessionID == sessionID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

// SeatRepo --------------------------------------------------------------

type SeatRepo struct {
	mu    sync.Mutex
	seats map[string]*model.Seat
}

func NewSeatRepo() *SeatRepo {
	return &SeatRepo{seats: make(map[string]*model.Seat)}
}

func (r *SeatRepo) CreateMany(ctx context.Context, seats []*model.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range seats {
		copied := *s
		r.seats[copied.ID] = &copied
	}
	return nil
}

func (r *SeatRepo) GetByID(ctx context.Context, id string) (*model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.seats[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *SeatRepo) GetByClassroom(ctx context.Context, classroomID string) ([]*model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var seats []*model.Seat
	for _, s := range r.seats {
		if s.ClassroomID == classroomID {
			copied := *s
			seats = append(seats, &copied)
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Column < seats[j].Column
	})
	return seats, nil
}

func (r *SeatRepo) GetByStudent(ctx context.Context, classroomID, studentID string) (*model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s.StudentID == studentID && (classroomID == "" || s.ClassroomID == classroomID) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *SeatRepo) ReleaseFor(ctx context.Context, classroomID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s.ClassroomID == classroomID && s.StudentID == studentID {
			s.Status = model.SeatEmpty
			s.StudentID = ""
			s.StudentName = ""
			s.AssignedAt = nil
		}
	}
	return nil
}

func (r *SeatRepo) Claim(ctx context.Context, seatID, classroomID, studentID, studentName string, at time.Time) (*model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[seatID]
	if !ok || s.ClassroomID != classroomID {
		return nil, repository.ErrNotFound
	}
	if s.StudentID != "" {
		copied := *s
		return &copied, repository.ErrSeatTaken
	}
	s.Status = model.SeatOccupied
	s.StudentID = studentID
	s.StudentName = studentName
	assigned := at
	s.AssignedAt = &assigned
	copied := *s
	return &copied, nil
}

func (r *SeatRepo) SetStatus(ctx context.Context, seatID string, status model.SeatStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[seatID]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	return nil
}

func (r *SeatRepo) ClearSpeaking(ctx context.Context, classroomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s.ClassroomID == classroomID && s.Status == model.SeatSpeaking {
			s.Status = model.SeatOccupied
		}
	}
	return nil
}

// HandRaiseRepo ---------------------------------------------------------

type HandRaiseRepo struct {
	mu     sync.Mutex
	raises map[string]*model.HandRaise
}

func NewHandRaiseRepo() *HandRaiseRepo {
	return &HandRaiseRepo{raises: make(map[string]*model.HandRaise)}
}

func (r *HandRaiseRepo) Create(ctx context.Context, hr *model.HandRaise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *hr
	r.raises[copied.ID] = &copied
	return nil
}

func (r *HandRaiseRepo) GetByID(ctx context.Context, id string) (*model.HandRaise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hr, ok := r.raises[id]; ok {
		copied := *hr
		return &copied, nil
	}
	return nil, nil
}

func (r *HandRaiseRepo) GetActiveBySeat(ctx context.Context, seatID string) (*model.HandRaise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, hr := range r.raises {
		if hr.SeatID == seatID && hr.LoweredAt == nil {
			copied := *hr
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *HandRaiseRepo) GetActiveByClassroom(ctx context.Context, classroomID string) ([]*model.HandRaise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var raises []*model.HandRaise
	for _, hr := range r.raises {
		if hr.ClassroomID == classroomID && hr.LoweredAt == nil {
			copied := *hr
			raises = append(raises, &copied)
		}
	}
	sort.Slice(raises, func(i, j int) bool { return raises[i].RaisedAt.Before(raises[j].RaisedAt) })
	return raises, nil
}

func (r *HandRaiseRepo) Lower(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hr, ok := r.raises[id]
	if !ok || hr.LoweredAt != nil {
		return repository.ErrStale
	}
	lowered := at
	hr.LoweredAt = &lowered
	return nil
}

func (r *HandRaiseRepo) Acknowledge(ctx context.Context, id string) (*model.HandRaise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hr, ok := r.raises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if hr.LoweredAt != nil {
		return nil, repository.ErrStale
	}
	hr.Acknowledged = true
	copied := *hr
	return &copied, nil
}

// RoundRepo -------------------------------------------------------------

type RoundRepo struct {
	mu     sync.Mutex
	rounds map[string]*model.UpdateRound
	turns  map[string]*model.UpdateTurn
}

func NewRoundRepo() *RoundRepo {
	return &RoundRepo{
		rounds: make(map[string]*model.UpdateRound),
		turns:  make(map[string]*model.UpdateTurn),
	}
}

func (r *RoundRepo) CreateRound(ctx context.Context, round *model.UpdateRound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *round
	r.rounds[copied.ID] = &copied
	return nil
}

func (r *RoundRepo) GetRound(ctx context.Context, id string) (*model.UpdateRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if round, ok := r.rounds[id]; ok {
		copied := *round
		return &copied, nil
	}
	return nil, nil
}

func (r *RoundRepo) GetActiveRound(ctx context.Context, classroomID string) (*model.UpdateRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.ClassroomID == classroomID && round.EndedAt == nil {
			copied := *round
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *RoundRepo) EndRound(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.rounds[id]
	if !ok || round.EndedAt != nil {
		return repository.ErrStale
	}
	ended := at
	round.EndedAt = &ended
	return nil
}

func (r *RoundRepo) CreateTurn(ctx context.Context, turn *model.UpdateTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *turn
	r.turns[copied.ID] = &copied
	return nil
}

func (r *RoundRepo) GetTurn(ctx context.Context, id string) (*model.UpdateTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if turn, ok := r.turns[id]; ok {
		copied := *turn
		return &copied, nil
	}
	return nil, nil
}

func (r *RoundRepo) GetTurns(ctx context.Context, roundID string) ([]*model.UpdateTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []*model.UpdateTurn
	for _, turn := range r.turns {
		if turn.RoundID == roundID {
			copied := *turn
			turns = append(turns, &copied)
		}
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].StartedAt.Before(turns[j].StartedAt) })
	return turns, nil
}

func (r *RoundRepo) CloseTurn(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	turn, ok := r.turns[id]
	if !ok {
		return repository.ErrNotFound
	}
	if turn.EndedAt != nil {
		return repository.ErrStale
	}
	ended := at
	turn.EndedAt = &ended
	return nil
}

// ContentRepo -----------------------------------------------------------

type ContentRepo struct {
	mu       sync.RWMutex
	contents map[string]*model.SharedContent
}

func NewContentRepo() *ContentRepo {
	return &ContentRepo{contents: make(map[string]*model.SharedContent)}
}

func (r *ContentRepo) Create(ctx context.Context, content *model.SharedContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *content
	r.contents[copied.ID] = &copied
	return nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id string) (*model.SharedContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.contents[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *ContentRepo) GetBySeat(ctx context.Context, seatID string) ([]*model.SharedContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var contents []*model.SharedContent
	for _, c := range r.contents {
		if c.SeatID == seatID {
			copied := *c
			contents = append(contents, &copied)
		}
	}
	sort.Slice(contents, func(i, j int) bool { return contents[i].SharedAt.After(contents[j].SharedAt) })
	return contents, nil
}

// DirectoryRepo ---------------------------------------------------------

// DirectoryRepo is a seedable stand-in for the external course and
// enrollment store.
type DirectoryRepo struct {
	mu                 sync.RWMutex
	sessions           map[string]*repository.SessionInfo
	enrollments        map[string]bool // userID|courseID
	sessionEnrollments map[string]bool // userID|sessionID
	attendance         map[string]string
}

func NewDirectoryRepo() *DirectoryRepo {
	return &DirectoryRepo{
		sessions:           make(map[string]*repository.SessionInfo),
		enrollments:        make(map[string]bool),
		sessionEnrollments: make(map[string]bool),
		attendance:         make(map[string]string),
	}
}

// AddSession seeds a session with its course chain.
func (r *DirectoryRepo) AddSession(sessionID, courseID, teacherID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = &repository.SessionInfo{SessionID: sessionID, CourseID: courseID, TeacherID: teacherID}
}

// Enroll seeds an active course enrollment plus a confirmed session
// enrollment for the student.
func (r *DirectoryRepo) Enroll(userID, courseID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments[userID+"|"+courseID] = true
	r.sessionEnrollments[userID+"|"+sessionID] = true
}

func (r *DirectoryRepo) ResolveSession(ctx context.Context, sessionID string) (*repository.SessionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.sessions[sessionID]; ok {
		copied := *info
		return &copied, nil
	}
	return nil, nil
}

func (r *DirectoryRepo) IsActiveEnrollment(ctx context.Context, userID, courseID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enrollments[userID+"|"+courseID], nil
}

func (r *DirectoryRepo) IsConfirmedSessionEnrollment(ctx context.Context, userID, sessionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionEnrollments[userID+"|"+sessionID], nil
}

func (r *DirectoryRepo) MarkAttendance(ctx context.Context, sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attendance[sessionID+"|"+userID] = "present"
	return nil
}

// Attendance reports the recorded status for a student, empty if none.
func (r *DirectoryRepo) Attendance(sessionID, userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.attendance[sessionID+"|"+userID]
}
