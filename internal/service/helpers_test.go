package service_test

import (
	"classroomlive/internal/model"
	"classroomlive/internal/repository/memory"
	"classroomlive/internal/service"
	"context"
	"io"
	"sync"
	"testing"
)

const (
	testSession = "sess-1"
	testCourse  = "course-1"
	teacherID   = "teacher-1"
)

type publishedEvent struct {
	Group   string
	MsgType string
	Payload interface{}
}

// recordingPublisher captures events instead of fanning them out.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishToClassroom(classroomID string, msgType string, payload interface{}) {
	p.record("classroom:"+classroomID, msgType, payload)
}

func (p *recordingPublisher) PublishToUser(userID string, msgType string, payload interface{}) {
	p.record("user:"+userID, msgType, payload)
}

func (p *recordingPublisher) record(group, msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Group: group, MsgType: msgType, Payload: payload})
}

func (p *recordingPublisher) ofType(msgType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.MsgType == msgType {
			out = append(out, e)
		}
	}
	return out
}

type fakeBlobStore struct {
	mu    sync.Mutex
	saved []string
}

func (b *fakeBlobStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = append(b.saved, filename)
	return "/media/" + filename, nil
}

// env wires the services onto in-memory repositories with one seeded
// session taught by teacherID.
type env struct {
	classrooms *memory.ClassroomRepo
	seats      *memory.SeatRepo
	handRaises *memory.HandRaiseRepo
	rounds     *memory.RoundRepo
	contents   *memory.ContentRepo
	directory  *memory.DirectoryRepo
	guard      *service.AccessGuard
	pub        *recordingPublisher
	blobs      *fakeBlobStore

	classroomSvc *service.ClassroomService
	handSvc      *service.HandService
	roundSvc     *service.RoundService
	contentSvc   *service.ContentService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		classrooms: memory.NewClassroomRepo(),
		seats:      memory.NewSeatRepo(),
		handRaises: memory.NewHandRaiseRepo(),
		rounds:     memory.NewRoundRepo(),
		contents:   memory.NewContentRepo(),
		directory:  memory.NewDirectoryRepo(),
		pub:        &recordingPublisher{},
		blobs:      &fakeBlobStore{},
	}
	e.directory.AddSession(testSession, testCourse, teacherID)

	e.guard = service.NewAccessGuard(e.classrooms, e.directory, nil)
	locks := service.NewClassroomLocks()

	e.classroomSvc = service.NewClassroomService(e.classrooms, e.seats, e.rounds, e.handRaises, e.directory, e.guard, nil, locks, 2, 3)
	e.handSvc = service.NewHandService(e.seats, e.handRaises, e.guard, locks)
	e.roundSvc = service.NewRoundService(e.seats, e.rounds, e.guard, locks)
	e.contentSvc = service.NewContentService(e.contents, e.seats, e.guard, e.blobs)

	e.classroomSvc.SetPublisher(e.pub)
	e.handSvc.SetPublisher(e.pub)
	e.roundSvc.SetPublisher(e.pub)
	e.contentSvc.SetPublisher(e.pub)

	return e
}

func (e *env) enroll(userID string) {
	e.directory.Enroll(userID, testCourse, testSession)
}

func (e *env) classroom(t *testing.T) *model.Classroom {
	t.Helper()
	classroom, err := e.classroomSvc.EnsureClassroom(context.Background(), testSession)
	if err != nil {
		t.Fatalf("EnsureClassroom: %v", err)
	}
	return classroom
}

func (e *env) seatIDs(t *testing.T, classroomID string) []string {
	t.Helper()
	seats, err := e.seats.GetByClassroom(context.Background(), classroomID)
	if err != nil {
		t.Fatalf("GetByClassroom: %v", err)
	}
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	return ids
}

func (e *env) sit(t *testing.T, classroomID, seatID, userID, username string) *model.Seat {
	t.Helper()
	seat, err := e.classroomSvc.SelectSeat(context.Background(), userID, username, classroomID, seatID)
	if err != nil {
		t.Fatalf("SelectSeat(%s, %s): %v", userID, seatID, err)
	}
	return seat
}

func (e *env) seat(t *testing.T, seatID string) *model.Seat {
	t.Helper()
	seat, err := e.seats.GetByID(context.Background(), seatID)
	if err != nil {
		t.Fatalf("GetByID(%s): %v", seatID, err)
	}
	if seat == nil {
		t.Fatalf("seat %s disappeared", seatID)
	}
	return seat
}
