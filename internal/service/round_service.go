package service

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Picker selects an index in [0, n). Injected so tests can pin the
// otherwise random speaker selection.
type Picker func(n int) int

const defaultTurnSeconds = 60

// RoundService sequences update rounds: one open turn at a time, the
// next speaker drawn at random from seats that have not yet spoken.
type RoundService struct {
	seats     repository.SeatRepo
	rounds    repository.RoundRepo
	guard     *AccessGuard
	locks     *classroomLocks
	publisher Publisher
	pick      Picker
}

func NewRoundService(
	seats repository.SeatRepo,
	rounds repository.RoundRepo,
	guard *AccessGuard,
	locks *classroomLocks,
) *RoundService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &RoundService{
		seats:  seats,
		rounds: rounds,
		guard:  guard,
		locks:  locks,
		pick:   rng.Intn,
	}
}

func (s *RoundService) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetPicker replaces the speaker-selection policy.
func (s *RoundService) SetPicker(pick Picker) {
	s.pick = pick
}

// StartRound opens a new update round. Candidates are the classroom's
// occupied or speaking seats, optionally narrowed to seatIDs; the first
// speaker is picked at random and their turn opened immediately.
func (s *RoundService) StartRound(ctx context.Context, userID, classroomID string, durationSeconds int, seatIDs []string) (*model.UpdateRound, *model.UpdateTurn, error) {
	if !s.guard.IsTeacher(ctx, userID, classroomID) {
		return nil, nil, fmt.Errorf("%w: only teachers can start update rounds", ErrUnauthorized)
	}
	if durationSeconds <= 0 {
		durationSeconds = defaultTurnSeconds
	}

	unlock := s.locks.lock(classroomID)
	defer unlock()

	if active, err := s.rounds.GetActiveRound(ctx, classroomID); err != nil {
		return nil, nil, fmt.Errorf("get active round: %w", err)
	} else if active != nil {
		return nil, nil, fmt.Errorf("%w: an update round is already active", ErrInvalidState)
	}

	seats, err := s.seats.GetByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, fmt.Errorf("list seats: %w", err)
	}

	wanted := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = true
	}

	var candidates []*model.Seat
	for _, seat := range seats {
		if seat.Status != model.SeatOccupied && seat.Status != model.SeatSpeaking {
			continue
		}
		if len(wanted) > 0 && !wanted[seat.ID] {
			continue
		}
		candidates = append(candidates, seat)
	}
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: no active seats found for the update round", ErrInvalidState)
	}

	round := &model.UpdateRound{
		ID:              uuid.New().String(),
		ClassroomID:     classroomID,
		DurationSeconds: durationSeconds,
		StartedAt:       time.Now(),
	}
	if err := s.rounds.CreateRound(ctx, round); err != nil {
		return nil, nil, fmt.Errorf("create round: %w", err)
	}

	first := candidates[s.pick(len(candidates))]
	turn, err := s.openTurn(ctx, round, first)
	if err != nil {
		return nil, nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishToClassroom(classroomID, MsgUpdateRound, model.UpdateRoundEvent{
			RoundID:        round.ID,
			Action:         "started",
			CurrentStudent: turn.StudentName,
			RemainingTime:  round.DurationSeconds,
		})
	}

	return round, turn, nil
}

// EndTurn closes the open turn. If seats remain that have not yet had a
// turn, the next speaker is picked at random and their turn opened;
// otherwise the round completes. Allowed for the classroom teacher and
// the occupant of the turn's seat.
func (s *RoundService) EndTurn(ctx context.Context, userID, turnID string) (*model.TurnResult, error) {
	turn, err := s.rounds.GetTurn(ctx, turnID)
	if err != nil {
		return nil, fmt.Errorf("get turn: %w", err)
	}
	if turn == nil || !turn.Open() {
		return nil, fmt.Errorf("%w: turn %s", ErrNotFound, turnID)
	}

	cc, err := s.guard.Context(ctx, turn.ClassroomID)
	if err != nil || cc == nil {
		return nil, fmt.Errorf("%w: classroom %s", ErrNotFound, turn.ClassroomID)
	}

	isTeacher := cc.TeacherID == userID
	ownsTurnSeat := false
	if seat, err := s.seats.GetByID(ctx, turn.SeatID); err == nil && seat != nil {
		ownsTurnSeat = seat.StudentID == userID
	}
	if !isTeacher && !ownsTurnSeat {
		return nil, fmt.Errorf("%w: you cannot end this turn", ErrUnauthorized)
	}

	unlock := s.locks.lock(turn.ClassroomID)
	defer unlock()

	if err := s.rounds.CloseTurn(ctx, turnID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStale) || errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: turn %s", ErrNotFound, turnID)
		}
		return nil, fmt.Errorf("close turn: %w", err)
	}

	round, err := s.rounds.GetRound(ctx, turn.RoundID)
	if err != nil || round == nil {
		return nil, fmt.Errorf("get round: %w", err)
	}

	next, err := s.nextSeat(ctx, round, cc.TeacherID)
	if err != nil {
		return nil, err
	}

	if next != nil {
		nextTurn, err := s.openTurn(ctx, round, next)
		if err != nil {
			return nil, err
		}
		if s.publisher != nil {
			s.publisher.PublishToClassroom(round.ClassroomID, MsgUpdateRound, model.UpdateRoundEvent{
				RoundID:        round.ID,
				Action:         "turn_ended",
				CurrentStudent: nextTurn.StudentName,
				RemainingTime:  round.DurationSeconds,
			})
		}
		return &model.TurnResult{Completed: false, NextTurn: nextTurn}, nil
	}

	now := time.Now()
	if err := s.rounds.EndRound(ctx, round.ID, now); err != nil && !errors.Is(err, repository.ErrStale) {
		return nil, fmt.Errorf("end round: %w", err)
	}
	round.EndedAt = &now

	if s.publisher != nil {
		s.publisher.PublishToClassroom(round.ClassroomID, MsgUpdateRound, model.UpdateRoundEvent{
			RoundID: round.ID,
			Action:  "completed",
		})
	}
	return &model.TurnResult{Completed: true, Round: round}, nil
}

// nextSeat picks a random occupied seat that has not had a turn in this
// round, excluding the teacher's own seat. Nil when everyone has spoken.
func (s *RoundService) nextSeat(ctx context.Context, round *model.UpdateRound, teacherID string) (*model.Seat, error) {
	turns, err := s.rounds.GetTurns(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	taken := make(map[string]bool, len(turns))
	for _, t := range turns {
		taken[t.SeatID] = true
	}

	seats, err := s.seats.GetByClassroom(ctx, round.ClassroomID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}

	var remaining []*model.Seat
	for _, seat := range seats {
		if !seat.Occupied() || seat.StudentID == teacherID || taken[seat.ID] {
			continue
		}
		remaining = append(remaining, seat)
	}
	if len(remaining) == 0 {
		return nil, nil
	}
	return remaining[s.pick(len(remaining))], nil
}

func (s *RoundService) openTurn(ctx context.Context, round *model.UpdateRound, seat *model.Seat) (*model.UpdateTurn, error) {
	turn := &model.UpdateTurn{
		ID:          uuid.New().String(),
		RoundID:     round.ID,
		ClassroomID: round.ClassroomID,
		SeatID:      seat.ID,
		StudentID:   seat.StudentID,
		StudentName: seat.StudentName,
		StartedAt:   time.Now(),
	}
	if err := s.rounds.CreateTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("create turn: %w", err)
	}
	return turn, nil
}
