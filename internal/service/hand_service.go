package service

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HandService runs the hand-raise lifecycle: raise, lower, and the
// teacher calling on a raised hand.
type HandService struct {
	seats      repository.SeatRepo
	handRaises repository.HandRaiseRepo
	guard      *AccessGuard
	locks      *classroomLocks
	publisher  Publisher
}

func NewHandService(
	seats repository.SeatRepo,
	handRaises repository.HandRaiseRepo,
	guard *AccessGuard,
	locks *classroomLocks,
) *HandService {
	return &HandService{
		seats:      seats,
		handRaises: handRaises,
		guard:      guard,
		locks:      locks,
	}
}

func (s *HandService) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetHandRaised raises or lowers the hand on a seat. An empty seatID
// falls back to the caller's current seat. Idempotent: repeating the
// same request reports HandActionUnchanged.
func (s *HandService) SetHandRaised(ctx context.Context, userID string, seatID string, raised bool) (model.HandAction, *model.Seat, error) {
	var seat *model.Seat
	var err error

	if seatID == "" {
		seat, err = s.seats.GetByStudent(ctx, "", userID)
		if err != nil {
			return "", nil, fmt.Errorf("get current seat: %w", err)
		}
		if seat == nil {
			return "", nil, fmt.Errorf("%w: you must be seated to raise your hand", ErrInvalidState)
		}
	} else {
		seat, err = s.seats.GetByID(ctx, seatID)
		if err != nil {
			return "", nil, fmt.Errorf("get seat: %w", err)
		}
		if seat == nil {
			return "", nil, fmt.Errorf("%w: seat %s", ErrNotFound, seatID)
		}
		if seat.StudentID != userID {
			return "", nil, fmt.Errorf("%w: you can only raise or lower your own hand", ErrUnauthorized)
		}
	}

	unlock := s.locks.lock(seat.ClassroomID)
	defer unlock()

	active, err := s.handRaises.GetActiveBySeat(ctx, seat.ID)
	if err != nil {
		return "", nil, fmt.Errorf("get active hand raise: %w", err)
	}

	switch {
	case active != nil && !raised:
		if err := s.handRaises.Lower(ctx, active.ID, time.Now()); err != nil && !errors.Is(err, repository.ErrStale) {
			return "", nil, fmt.Errorf("lower hand: %w", err)
		}
		if err := s.seats.SetStatus(ctx, seat.ID, model.SeatOccupied); err != nil {
			return "", nil, fmt.Errorf("update seat: %w", err)
		}
		seat.Status = model.SeatOccupied
		s.publishHand(seat, false)
		return model.HandActionLowered, seat, nil

	case active == nil && raised:
		hr := &model.HandRaise{
			ID:          uuid.New().String(),
			SeatID:      seat.ID,
			ClassroomID: seat.ClassroomID,
			StudentID:   seat.StudentID,
			StudentName: seat.StudentName,
			RaisedAt:    time.Now(),
		}
		if err := s.handRaises.Create(ctx, hr); err != nil {
			return "", nil, fmt.Errorf("create hand raise: %w", err)
		}
		if err := s.seats.SetStatus(ctx, seat.ID, model.SeatHandRaised); err != nil {
			return "", nil, fmt.Errorf("update seat: %w", err)
		}
		seat.Status = model.SeatHandRaised
		s.publishHand(seat, true)
		return model.HandActionRaised, seat, nil

	default:
		return model.HandActionUnchanged, seat, nil
	}
}

// CallOnStudent acknowledges an active hand raise and makes its seat the
// sole speaking seat in the classroom.
func (s *HandService) CallOnStudent(ctx context.Context, userID, handRaiseID string) (*model.HandRaise, *model.Seat, error) {
	hr, err := s.handRaises.GetByID(ctx, handRaiseID)
	if err != nil {
		return nil, nil, fmt.Errorf("get hand raise: %w", err)
	}
	if hr == nil || !hr.Active() {
		return nil, nil, fmt.Errorf("%w: hand raise %s", ErrNotFound, handRaiseID)
	}

	if !s.guard.IsTeacher(ctx, userID, hr.ClassroomID) {
		return nil, nil, fmt.Errorf("%w: only the teacher can select who speaks", ErrUnauthorized)
	}

	unlock := s.locks.lock(hr.ClassroomID)
	defer unlock()

	// Acknowledge before touching any seat. The hand may have been
	// lowered while we waited for the lock; failing here leaves the
	// current speaker in place.
	hr, err = s.handRaises.Acknowledge(ctx, handRaiseID)
	if err != nil {
		if errors.Is(err, repository.ErrStale) || errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: hand raise %s", ErrNotFound, handRaiseID)
		}
		return nil, nil, fmt.Errorf("acknowledge hand raise: %w", err)
	}

	if err := s.seats.ClearSpeaking(ctx, hr.ClassroomID); err != nil {
		return nil, nil, fmt.Errorf("clear speaking: %w", err)
	}

	if err := s.seats.SetStatus(ctx, hr.SeatID, model.SeatSpeaking); err != nil {
		return nil, nil, fmt.Errorf("update seat: %w", err)
	}

	seat, err := s.seats.GetByID(ctx, hr.SeatID)
	if err != nil || seat == nil {
		return nil, nil, fmt.Errorf("get seat: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishToClassroom(hr.ClassroomID, MsgSeatUpdate, model.SeatUpdateEvent{
			SeatID:      seat.ID,
			Status:      seat.Status,
			StudentID:   seat.StudentID,
			StudentName: seat.StudentName,
		})
	}

	return hr, seat, nil
}

// RaisedHands returns the active hand-raise queue, oldest first, limited
// to seats that still have an occupant.
func (s *HandService) RaisedHands(ctx context.Context, userID, classroomID string) ([]*model.HandRaise, error) {
	if !s.guard.CanJoin(ctx, userID, classroomID) {
		return nil, fmt.Errorf("%w: access denied", ErrUnauthorized)
	}

	raised, err := s.handRaises.GetActiveByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list hand raises: %w", err)
	}

	seats, err := s.seats.GetByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	occupied := make(map[string]bool, len(seats))
	for _, seat := range seats {
		if seat.Occupied() {
			occupied[seat.ID] = true
		}
	}

	queue := make([]*model.HandRaise, 0, len(raised))
	for _, hr := range raised {
		if occupied[hr.SeatID] {
			queue = append(queue, hr)
		}
	}
	return queue, nil
}

func (s *HandService) publishHand(seat *model.Seat, raised bool) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToClassroom(seat.ClassroomID, MsgHandRaise, model.HandRaiseEvent{
		SeatID:      seat.ID,
		Raised:      raised,
		StudentID:   seat.StudentID,
		StudentName: seat.StudentName,
	})
}
