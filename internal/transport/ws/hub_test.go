package ws_test

import (
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"classroomlive/internal/transport/ws"
	"encoding/json"
	"testing"
	"time"
)

func newConn(classroomID, userID string) *ws.Connection {
	return &ws.Connection{
		ClassroomID: classroomID,
		UserID:      userID,
		Username:    userID,
		Send:        make(chan []byte, 16),
	}
}

func waitForSize(t *testing.T, hub *ws.Hub, group string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GroupSize(group) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("group %s never reached size %d", group, want)
}

func receive(t *testing.T, conn *ws.Connection) ws.Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("invalid envelope %s: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return ws.Message{}
	}
}

func expectSilence(t *testing.T, conn *ws.Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoutesToClassroomGroup(t *testing.T) {
	hub := ws.NewHub()

	a := newConn("class-1", "user-a")
	b := newConn("class-1", "user-b")
	other := newConn("class-2", "user-c")
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)
	waitForSize(t, hub, ws.ClassroomGroup("class-1"), 2)
	waitForSize(t, hub, ws.ClassroomGroup("class-2"), 1)

	hub.PublishToClassroom("class-1", service.MsgSeatUpdate, model.SeatUpdateEvent{SeatID: "seat-1"})

	for _, conn := range []*ws.Connection{a, b} {
		msg := receive(t, conn)
		if msg.Type != service.MsgSeatUpdate {
			t.Fatalf("expected seat_update, got %q", msg.Type)
		}
		var event model.SeatUpdateEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if event.SeatID != "seat-1" {
			t.Fatalf("unexpected payload: %+v", event)
		}
	}
	expectSilence(t, other)
}

func TestHubRoutesToUserGroup(t *testing.T) {
	hub := ws.NewHub()

	a := newConn("class-1", "user-a")
	b := newConn("class-1", "user-b")
	hub.Register(a)
	hub.Register(b)
	waitForSize(t, hub, ws.UserGroup("user-a"), 1)
	waitForSize(t, hub, ws.UserGroup("user-b"), 1)

	hub.PublishToUser("user-b", service.MsgChatMessage, model.ChatMessageEvent{
		Message:  "psst",
		Sender:   "user-a",
		SenderID: "user-a",
	})

	msg := receive(t, b)
	if msg.Type != service.MsgChatMessage {
		t.Fatalf("expected chat_message, got %q", msg.Type)
	}
	expectSilence(t, a)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := ws.NewHub()

	conn := newConn("class-1", "user-a")
	hub.Register(conn)
	waitForSize(t, hub, ws.ClassroomGroup("class-1"), 1)

	hub.Unregister(conn)
	waitForSize(t, hub, ws.ClassroomGroup("class-1"), 0)

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected the send channel to be closed, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}

	// Publishing after the member left must not panic or deliver.
	hub.PublishToClassroom("class-1", service.MsgSeatUpdate, model.SeatUpdateEvent{SeatID: "seat-1"})
	time.Sleep(20 * time.Millisecond)
}
