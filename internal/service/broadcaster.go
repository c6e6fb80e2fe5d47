package service

// Publisher is the pub/sub port the state machine publishes through
// (avoids an import cycle with the transport layer). The hub implements
// it; delivery is fire-and-forget and never blocks the mutation path.
type Publisher interface {
	PublishToClassroom(classroomID string, msgType string, payload interface{})
	PublishToUser(userID string, msgType string, payload interface{})
}

// Broadcast message types, mirrored client->server and server->client.
const (
	MsgSeatUpdate   = "seat_update"
	MsgHandRaise    = "hand_raise"
	MsgUpdateRound  = "update_round"
	MsgChatMessage  = "chat_message"
	MsgContentShare = "content_share"
	MsgUserJoined   = "user_joined"
	MsgUserLeft     = "user_left"
)
