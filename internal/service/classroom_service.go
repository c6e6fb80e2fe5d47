package service

import (
	"classroomlive/internal/cache"
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// ClassroomService owns classroom lifecycle and seat assignment.
type ClassroomService struct {
	classrooms repository.ClassroomRepo
	seats      repository.SeatRepo
	rounds     repository.RoundRepo
	handRaises repository.HandRaiseRepo
	directory  repository.DirectoryRepo
	guard      *AccessGuard
	presence   cache.PresenceCache
	locks      *classroomLocks
	publisher  Publisher

	rows    int
	columns int
}

func NewClassroomService(
	classrooms repository.ClassroomRepo,
	seats repository.SeatRepo,
	rounds repository.RoundRepo,
	handRaises repository.HandRaiseRepo,
	directory repository.DirectoryRepo,
	guard *AccessGuard,
	presence cache.PresenceCache,
	locks *classroomLocks,
	rows, columns int,
) *ClassroomService {
	return &ClassroomService{
		classrooms: classrooms,
		seats:      seats,
		rounds:     rounds,
		handRaises: handRaises,
		directory:  directory,
		guard:      guard,
		presence:   presence,
		locks:      locks,
		rows:       rows,
		columns:    columns,
	}
}

// SetPublisher injects the fan-out hub once it exists.
func (s *ClassroomService) SetPublisher(p Publisher) {
	s.publisher = p
}

// EnsureClassroom returns the classroom for the session, creating it and
// its seat grid on first access.
func (s *ClassroomService) EnsureClassroom(ctx context.Context, sessionID string) (*model.Classroom, error) {
	classroom, err := s.classrooms.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get classroom: %w", err)
	}
	if classroom != nil {
		return classroom, nil
	}

	unlock := s.locks.lock("session:" + sessionID)
	defer unlock()

	// A concurrent first access may have won the lock before us.
	classroom, err = s.classrooms.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get classroom: %w", err)
	}
	if classroom != nil {
		return classroom, nil
	}

	classroom = &model.Classroom{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Rows:      s.rows,
		Columns:   s.columns,
		CreatedAt: time.Now(),
	}
	if err := s.classrooms.Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("create classroom: %w", err)
	}

	seats := make([]*model.Seat, 0, s.rows*s.columns)
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.columns; col++ {
			seats = append(seats, &model.Seat{
				ID:          uuid.New().String(),
				ClassroomID: classroom.ID,
				Row:         row,
				Column:      col,
				Status:      model.SeatEmpty,
			})
		}
	}
	if err := s.seats.CreateMany(ctx, seats); err != nil {
		return nil, fmt.Errorf("create seats: %w", err)
	}

	log.Printf("[Classroom] Created classroom %s for session %s (%dx%d)", classroom.ID, sessionID, s.rows, s.columns)
	return classroom, nil
}

// State returns the full classroom snapshot for a session, creating the
// classroom lazily. Fetching state as a student marks attendance.
func (s *ClassroomService) State(ctx context.Context, sessionID, userID string) (*model.ClassroomState, error) {
	info, err := s.directory.ResolveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	isTeacher := info.TeacherID == userID
	classroom, err := s.EnsureClassroom(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isTeacher && !s.guard.IsEnrolled(ctx, userID, classroom.ID) {
		return nil, fmt.Errorf("%w: not enrolled in this course", ErrUnauthorized)
	}

	seats, err := s.seats.GetByClassroom(ctx, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}

	var userSeat *model.Seat
	for _, seat := range seats {
		if seat.StudentID == userID {
			userSeat = seat
			break
		}
	}

	raised, err := s.handRaises.GetActiveByClassroom(ctx, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("list hand raises: %w", err)
	}

	state := &model.ClassroomState{
		Classroom:   classroom,
		Seats:       seats,
		UserSeat:    userSeat,
		IsTeacher:   isTeacher,
		RaisedHands: raised,
	}

	round, err := s.rounds.GetActiveRound(ctx, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("get active round: %w", err)
	}
	if round != nil {
		state.ActiveRound = round
		turns, err := s.rounds.GetTurns(ctx, round.ID)
		if err != nil {
			return nil, fmt.Errorf("list turns: %w", err)
		}
		for _, turn := range turns {
			if turn.Open() {
				state.CurrentTurn = turn
				break
			}
		}
	}

	if !isTeacher {
		if err := s.directory.MarkAttendance(ctx, sessionID, userID); err != nil {
			// Attendance is best-effort; the classroom still loads.
			log.Printf("[Classroom] Failed to mark attendance for %s: %v", userID, err)
		}
	}

	return state, nil
}

// SelectSeat atomically moves the user onto the target seat: any prior
// seat in the classroom is released, and the claim fails with ErrConflict
// if the target already has an occupant. Exactly one of two concurrent
// claims on the same seat wins.
func (s *ClassroomService) SelectSeat(ctx context.Context, userID, username, classroomID, seatID string) (*model.Seat, error) {
	if seatID == "" {
		return nil, fmt.Errorf("%w: seat id is required", ErrInvalidInput)
	}
	if !s.guard.CanJoin(ctx, userID, classroomID) {
		return nil, fmt.Errorf("%w: not enrolled in this course", ErrUnauthorized)
	}

	unlock := s.locks.lock(classroomID)
	defer unlock()

	prior, err := s.seats.GetByStudent(ctx, classroomID, userID)
	if err != nil {
		return nil, fmt.Errorf("get current seat: %w", err)
	}
	if prior != nil {
		if prior.ID == seatID {
			// Already on the target seat.
			return prior, nil
		}
		if err := s.seats.ReleaseFor(ctx, classroomID, userID); err != nil {
			return nil, fmt.Errorf("release seat: %w", err)
		}
	}

	seat, err := s.seats.Claim(ctx, seatID, classroomID, userID, username, time.Now())
	if err != nil {
		// Restore the released seat so a failed claim leaves no
		// partial state.
		if prior != nil {
			if _, restoreErr := s.seats.Claim(ctx, prior.ID, classroomID, userID, username, time.Now()); restoreErr != nil {
				log.Printf("[Classroom] Failed to restore seat %s for %s: %v", prior.ID, userID, restoreErr)
			}
		}
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return nil, fmt.Errorf("%w: this seat is already taken", ErrConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: seat %s", ErrNotFound, seatID)
		default:
			return nil, fmt.Errorf("claim seat: %w", err)
		}
	}

	if s.publisher != nil {
		if prior != nil {
			s.publisher.PublishToClassroom(classroomID, MsgSeatUpdate, model.SeatUpdateEvent{
				SeatID: prior.ID,
				Status: model.SeatEmpty,
			})
		}
		s.publisher.PublishToClassroom(classroomID, MsgSeatUpdate, model.SeatUpdateEvent{
			SeatID:      seat.ID,
			Status:      seat.Status,
			StudentID:   seat.StudentID,
			StudentName: seat.StudentName,
		})
	}

	return seat, nil
}

// Participants lists the users currently connected to the classroom.
func (s *ClassroomService) Participants(ctx context.Context, userID, classroomID string) ([]model.Participant, error) {
	if !s.guard.CanJoin(ctx, userID, classroomID) {
		return nil, fmt.Errorf("%w: access denied", ErrUnauthorized)
	}
	if s.presence == nil {
		return []model.Participant{}, nil
	}
	participants, err := s.presence.List(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	return participants, nil
}

// Get returns the classroom by id, nil when absent.
func (s *ClassroomService) Get(ctx context.Context, classroomID string) (*model.Classroom, error) {
	return s.classrooms.GetByID(ctx, classroomID)
}
