package service_test

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository/memory"
	"classroomlive/internal/service"
	"context"
	"errors"
	"sync"
	"testing"
)

func TestStateCreatesClassroomLazily(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	ctx := context.Background()

	state, err := e.classroomSvc.State(ctx, testSession, "student-1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Classroom == nil {
		t.Fatal("expected classroom to be created on first access")
	}
	if len(state.Seats) != 6 {
		t.Fatalf("expected 2x3 seat grid, got %d seats", len(state.Seats))
	}
	for _, seat := range state.Seats {
		if seat.Status != model.SeatEmpty {
			t.Fatalf("seat %s created with status %q", seat.ID, seat.Status)
		}
	}

	again, err := e.classroomSvc.State(ctx, testSession, "student-1")
	if err != nil {
		t.Fatalf("State (second): %v", err)
	}
	if again.Classroom.ID != state.Classroom.ID {
		t.Fatalf("second access created another classroom: %s vs %s", again.Classroom.ID, state.Classroom.ID)
	}
}

func TestStateUnknownSession(t *testing.T) {
	e := newEnv(t)
	_, err := e.classroomSvc.State(context.Background(), "no-such-session", "student-1")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStateRequiresEnrollment(t *testing.T) {
	e := newEnv(t)
	_, err := e.classroomSvc.State(context.Background(), testSession, "stranger")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStateMarksAttendance(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	ctx := context.Background()

	if _, err := e.classroomSvc.State(ctx, testSession, "student-1"); err != nil {
		t.Fatalf("State: %v", err)
	}
	if got := e.directory.Attendance(testSession, "student-1"); got != "present" {
		t.Fatalf("expected attendance present, got %q", got)
	}

	if _, err := e.classroomSvc.State(ctx, testSession, teacherID); err != nil {
		t.Fatalf("State as teacher: %v", err)
	}
	if got := e.directory.Attendance(testSession, teacherID); got != "" {
		t.Fatalf("teacher should not be marked as attendee, got %q", got)
	}
}

func TestStateIncludesUserSeatAndRound(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")

	e.roundSvc.SetPicker(func(n int) int { return 0 })
	if _, _, err := e.roundSvc.StartRound(context.Background(), teacherID, classroom.ID, 90, nil); err != nil {
		t.Fatalf("StartRound: %v", err)
	}

	state, err := e.classroomSvc.State(context.Background(), testSession, "student-1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.UserSeat == nil || state.UserSeat.ID != seats[0] {
		t.Fatalf("expected user seat %s, got %+v", seats[0], state.UserSeat)
	}
	if state.ActiveRound == nil {
		t.Fatal("expected the active round in the snapshot")
	}
	if state.CurrentTurn == nil || state.CurrentTurn.StudentID != "student-1" {
		t.Fatalf("expected student-1's open turn, got %+v", state.CurrentTurn)
	}
}

type failingActiveRound struct {
	*memory.RoundRepo
}

func (r *failingActiveRound) GetActiveRound(ctx context.Context, classroomID string) (*model.UpdateRound, error) {
	return nil, errors.New("round store unavailable")
}

func TestStateReportsRoundStoreFailure(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	e.classroom(t)

	svc := service.NewClassroomService(
		e.classrooms,
		e.seats,
		&failingActiveRound{RoundRepo: e.rounds},
		e.handRaises,
		e.directory,
		e.guard,
		nil,
		service.NewClassroomLocks(),
		2, 3,
	)

	if _, err := svc.State(context.Background(), testSession, "student-1"); err == nil {
		t.Fatal("expected the round store failure to surface")
	}
}

func TestSelectSeat(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	seat := e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	if seat.Status != model.SeatOccupied || seat.StudentID != "student-1" || seat.StudentName != "Ada" {
		t.Fatalf("unexpected seat after claim: %+v", seat)
	}
	if seat.AssignedAt == nil {
		t.Fatal("expected AssignedAt to be set")
	}

	events := e.pub.ofType(service.MsgSeatUpdate)
	if len(events) != 1 {
		t.Fatalf("expected 1 seat_update event, got %d", len(events))
	}
}

func TestSelectSeatMove(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	e.sit(t, classroom.ID, seats[1], "student-1", "Ada")

	if old := e.seat(t, seats[0]); old.Status != model.SeatEmpty || old.StudentID != "" {
		t.Fatalf("old seat not released: %+v", old)
	}
	if cur := e.seat(t, seats[1]); cur.StudentID != "student-1" {
		t.Fatalf("new seat not claimed: %+v", cur)
	}

	// Move publishes the release and the claim.
	events := e.pub.ofType(service.MsgSeatUpdate)
	if len(events) != 3 {
		t.Fatalf("expected 3 seat_update events, got %d", len(events))
	}
}

func TestSelectSeatSameSeatNoop(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")

	if events := e.pub.ofType(service.MsgSeatUpdate); len(events) != 1 {
		t.Fatalf("reselecting the same seat should not publish, got %d events", len(events))
	}
}

func TestSelectSeatConflictRestoresPriorSeat(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	e.enroll("student-2")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	e.sit(t, classroom.ID, seats[0], "student-1", "Ada")
	e.sit(t, classroom.ID, seats[1], "student-2", "Grace")

	_, err := e.classroomSvc.SelectSeat(context.Background(), "student-2", "Grace", classroom.ID, seats[0])
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The loser keeps their original seat and the winner is untouched.
	if seat := e.seat(t, seats[1]); seat.StudentID != "student-2" {
		t.Fatalf("losing claim should restore the prior seat, got %+v", seat)
	}
	if seat := e.seat(t, seats[0]); seat.StudentID != "student-1" {
		t.Fatalf("contested seat changed occupant: %+v", seat)
	}
}

func TestSelectSeatUnknownSeat(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)

	_, err := e.classroomSvc.SelectSeat(context.Background(), "student-1", "Ada", classroom.ID, "no-such-seat")
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectSeatUnauthorizedLeavesStateUntouched(t *testing.T) {
	e := newEnv(t)
	e.enroll("student-1")
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	_, err := e.classroomSvc.SelectSeat(context.Background(), "stranger", "Eve", classroom.ID, seats[0])
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if seat := e.seat(t, seats[0]); seat.Status != model.SeatEmpty {
		t.Fatalf("rejected request mutated the seat: %+v", seat)
	}
	if events := e.pub.ofType(service.MsgSeatUpdate); len(events) != 0 {
		t.Fatalf("rejected request published %d events", len(events))
	}
}

func TestConcurrentClaimsSingleWinner(t *testing.T) {
	e := newEnv(t)
	classroom := e.classroom(t)
	seats := e.seatIDs(t, classroom.ID)

	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	for _, u := range users {
		e.enroll(u)
	}

	var wg sync.WaitGroup
	results := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			_, err := e.classroomSvc.SelectSeat(context.Background(), u, u, classroom.ID, seats[0])
			results[i] = err
		}(i, u)
	}
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrConflict):
		default:
			t.Fatalf("claim by %s failed with %v", users[i], err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", winners)
	}

	seat := e.seat(t, seats[0])
	if seat.Status != model.SeatOccupied || seat.StudentID == "" {
		t.Fatalf("contested seat in bad shape: %+v", seat)
	}
}

func TestParticipantsRequiresAccess(t *testing.T) {
	e := newEnv(t)
	classroom := e.classroom(t)

	_, err := e.classroomSvc.Participants(context.Background(), "stranger", classroom.ID)
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
