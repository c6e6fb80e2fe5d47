package ws

import (
	"classroomlive/internal/cache"
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Connection close codes for rejected joins.
const (
	CloseClassroomNotFound = 4004
	CloseUnauthorized      = 4003
	CloseInternalError     = 4000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

type eventHandler func(ctx context.Context, conn *Connection, payload json.RawMessage) error

// Handler accepts classroom WebSocket connections and dispatches the
// typed client events to the state machine. State-changing events are
// re-authorized on every frame; failures are logged and dropped, never
// answered, since the socket is not an error-reporting channel.
type Handler struct {
	hub          *Hub
	authSvc      *service.AuthService
	classroomSvc *service.ClassroomService
	handSvc      *service.HandService
	roundSvc     *service.RoundService
	contentSvc   *service.ContentService
	guard        *service.AccessGuard
	presence     cache.PresenceCache

	dispatch map[EventType]eventHandler
}

func NewHandler(
	hub *Hub,
	authSvc *service.AuthService,
	classroomSvc *service.ClassroomService,
	handSvc *service.HandService,
	roundSvc *service.RoundService,
	contentSvc *service.ContentService,
	guard *service.AccessGuard,
	presence cache.PresenceCache,
) *Handler {
	h := &Handler{
		hub:          hub,
		authSvc:      authSvc,
		classroomSvc: classroomSvc,
		handSvc:      handSvc,
		roundSvc:     roundSvc,
		contentSvc:   contentSvc,
		guard:        guard,
		presence:     presence,
	}
	h.dispatch = map[EventType]eventHandler{
		EventSeatUpdate:   h.onSeatUpdate,
		EventHandRaise:    h.onHandRaise,
		EventUpdateRound:  h.onUpdateRound,
		EventChatMessage:  h.onChatMessage,
		EventContentShare: h.onContentShare,
	}
	return h
}

// ClassroomWS handles GET /v1/ws/classrooms/{classroomId}.
func (h *Handler) ClassroomWS(w http.ResponseWriter, r *http.Request) {
	classroomID := mux.Vars(r)["classroomId"]

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	// Resolve the classroom before looking at the token, so a dangling
	// classroom ID always reads as not-found rather than unauthorized.
	ctx := r.Context()
	classroom, err := h.classroomSvc.Get(ctx, classroomID)
	if err != nil {
		log.Printf("[WS] Error resolving classroom %s: %v", classroomID, err)
		closeWith(wsConn, CloseInternalError, "internal error")
		return
	}
	if classroom == nil {
		log.Printf("[WS] Connection attempt to non-existent classroom %s", classroomID)
		closeWith(wsConn, CloseClassroomNotFound, "classroom not found")
		return
	}

	claims, err := h.authSvc.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		log.Printf("[WS] Unauthenticated connection attempt to classroom %s", classroomID)
		closeWith(wsConn, CloseUnauthorized, "unauthorized")
		return
	}

	if !h.guard.CanJoin(ctx, claims.UserID, classroomID) {
		log.Printf("[WS] Unauthorized user %s tried to join classroom %s", claims.UserID, classroomID)
		closeWith(wsConn, CloseUnauthorized, "unauthorized")
		return
	}

	conn := &Connection{
		ClassroomID: classroomID,
		UserID:      claims.UserID,
		Username:    claims.Username,
		IsTeacher:   h.guard.IsTeacher(ctx, claims.UserID, classroomID),
		Send:        make(chan []byte, 256),
	}

	h.hub.Register(conn)
	if h.presence != nil {
		if err := h.presence.Join(context.Background(), classroomID, conn.UserID, conn.Username); err != nil {
			log.Printf("[WS] Failed to record presence for %s: %v", conn.UserID, err)
		}
	}

	if !conn.IsTeacher {
		h.hub.PublishToClassroom(classroomID, service.MsgUserJoined, model.UserPresenceEvent{
			UserID:   conn.UserID,
			Username: conn.Username,
		})
	}

	go h.writePump(wsConn, conn)
	h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		if h.presence != nil {
			if err := h.presence.Leave(context.Background(), conn.ClassroomID, conn.UserID); err != nil {
				log.Printf("[WS] Failed to clear presence for %s: %v", conn.UserID, err)
			}
		}
		if !conn.IsTeacher {
			h.hub.PublishToClassroom(conn.ClassroomID, service.MsgUserLeft, model.UserPresenceEvent{
				UserID:   conn.UserID,
				Username: conn.Username,
			})
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error for %s: %v", conn.UserID, err)
			}
			return
		}
		h.handleFrame(conn, data)
	}
}

// handleFrame parses and dispatches one client frame. All failures are
// fail-quiet: logged, dropped, connection stays open.
func (h *Handler) handleFrame(conn *Connection, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[WS] Invalid JSON from %s: %.100s", conn.UserID, data)
		return
	}
	if env.Type == "" {
		log.Printf("[WS] Frame without type from %s", conn.UserID)
		return
	}

	handler, ok := h.dispatch[env.Type]
	if !ok {
		log.Printf("[WS] Unknown event type %q from %s", env.Type, conn.UserID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := handler(ctx, conn, env.Payload); err != nil {
		log.Printf("[WS] Dropped %s from %s: %v", env.Type, conn.UserID, err)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Event handlers -------------------------------------------------------

func (h *Handler) onSeatUpdate(ctx context.Context, conn *Connection, payload json.RawMessage) error {
	var p SeatUpdatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	_, err := h.classroomSvc.SelectSeat(ctx, conn.UserID, conn.Username, conn.ClassroomID, p.SeatID)
	return err
}

func (h *Handler) onHandRaise(ctx context.Context, conn *Connection, payload json.RawMessage) error {
	var p HandRaisePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	raised := true
	if p.Raised != nil {
		raised = *p.Raised
	}
	_, _, err := h.handSvc.SetHandRaised(ctx, conn.UserID, p.SeatID, raised)
	return err
}

func (h *Handler) onUpdateRound(ctx context.Context, conn *Connection, payload json.RawMessage) error {
	var p UpdateRoundPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	switch p.Action {
	case "start":
		_, _, err := h.roundSvc.StartRound(ctx, conn.UserID, conn.ClassroomID, p.DurationSeconds, p.Seats)
		return err
	case "end_turn":
		_, err := h.roundSvc.EndTurn(ctx, conn.UserID, p.TurnID)
		return err
	default:
		log.Printf("[WS] Unknown update_round action %q from %s", p.Action, conn.UserID)
		return nil
	}
}

// onChatMessage routes chat without persisting it: "everyone" goes to
// the classroom group, anything else point-to-point to the addressed
// user's group only.
func (h *Handler) onChatMessage(ctx context.Context, conn *Connection, payload json.RawMessage) error {
	var p ChatMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	if p.Message == "" {
		return nil
	}

	event := model.ChatMessageEvent{
		Message:   p.Message,
		Sender:    conn.Username,
		SenderID:  conn.UserID,
		Recipient: p.Recipient,
	}
	if p.Recipient == "" || p.Recipient == "everyone" {
		event.Recipient = "everyone"
		h.hub.PublishToClassroom(conn.ClassroomID, service.MsgChatMessage, event)
	} else {
		h.hub.PublishToUser(p.Recipient, service.MsgChatMessage, event)
	}
	return nil
}

func (h *Handler) onContentShare(ctx context.Context, conn *Connection, payload json.RawMessage) error {
	var p ContentSharePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	// File uploads go through the API layer; the socket carries only
	// link, code and notes shares.
	_, err := h.contentSvc.Share(ctx, conn.UserID, p.SeatID, service.ShareInput{
		ContentType: model.ContentType(p.ContentType),
		Link:        p.Link,
		Description: p.Description,
	})
	return err
}

func closeWith(wsConn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	wsConn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	wsConn.Close()
}
