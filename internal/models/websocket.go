package models

import (
	"encoding/json"
	"strconv"
)

// Inbound action names.
const (
	ActionListMessage  = "list-message"
	ActionListMember   = "list-member"
	ActionSendDirect   = "send-direct"
	ActionSendRoom     = "send-room"
	ActionUpdateStatus = "update-status"
)

// Outbound event names.
const (
	EventListOK    = "list-successfully"
	EventMemberOK  = "member-list-successfully"
	EventDirectOK  = "directly-successfully"
	EventRoomOK    = "room-successfully"
	EventStatusOK  = "status-successfully"
	EventPresence  = "presence"
	EventException = "exception"
)

// ActionEnvelope is the inbound wire frame.
type ActionEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Event is the outbound wire frame.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type PresencePayload struct {
	ID       int64 `json:"id"`
	IsOnline bool  `json:"isOnline"`
}

type ExceptionPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SendDirectPayload struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

type SendRoomPayload struct {
	Room    int64  `json:"room"`
	Content string `json:"content"`
}

type ListMessagePayload struct {
	Room       *int64 `json:"room,omitempty"`
	ReceiverID *int64 `json:"receiverId,omitempty"`
	Keyword    string `json:"keyword,omitempty"`
	Skip       any    `json:"skip,omitempty"`
	Limit      any    `json:"limit,omitempty"`
}

type ListMemberPayload struct {
	Keyword string `json:"keyword,omitempty"`
	Skip    any    `json:"skip,omitempty"`
	Limit   any    `json:"limit,omitempty"`
}

type UpdateStatusPayload struct {
	Room int64 `json:"room"`
}

// Channel names: one private channel per participant and one channel per
// room. Every joined connection is subscribed to its own user channel and
// to the common room's channel.
func UserChannel(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func RoomChannel(room int64) string {
	return "room:" + strconv.FormatInt(room, 10)
}
