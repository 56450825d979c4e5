package services

import (
	"context"

	"github.com/samber/lo"

	"chat-service/internal/chat"
	"chat-service/internal/database"
	"chat-service/internal/models"
	"chat-service/internal/presence"
	apperrors "chat-service/pkg/errors"
	"chat-service/pkg/logger"
)

// MessageService validates, persists and fans out chat messages, and
// answers the history/member/unread queries. It never retries store
// failures; that policy belongs to the store clients.
type MessageService struct {
	messages        database.MessageRepository
	users           database.UserRepository
	presence        presence.Store
	hub             Publisher
	defaultLimit    int
	maxLimit        int
	privilegedLevel int
}

func NewMessageService(messages database.MessageRepository, users database.UserRepository, store presence.Store, hub Publisher, defaultLimit, maxLimit, privilegedLevel int) *MessageService {
	return &MessageService{
		messages:        messages,
		users:           users,
		presence:        store,
		hub:             hub,
		defaultLimit:    defaultLimit,
		maxLimit:        maxLimit,
		privilegedLevel: privilegedLevel,
	}
}

// SendDirect persists a message to one receiver and pushes it to the
// receiver's private channel. The room is derived from the pair. The
// unread flag and the push are deliberately not atomic with the save; a
// flag without a delivered push is recoverable because the message row is
// durable.
func (s *MessageService) SendDirect(ctx context.Context, session *models.Session, receiverID int64, content string) (*models.Message, error) {
	msg, err := models.NewDirectMessage(session.UserID, receiverID, content)
	if err != nil {
		return nil, err
	}

	saved, err := s.persist(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := s.presence.AddUnread(receiverID, saved.Room); err != nil {
		logger.Warn("Error flagging unread for user %d room %d: %v", receiverID, saved.Room, err)
	}

	s.hub.Publish(models.UserChannel(receiverID), models.Event{
		Event: models.EventDirectOK,
		Data:  saved,
	})

	return saved, nil
}

// SendRoom persists a message to an explicitly addressed room and pushes
// it to the room's channel. Only the common room may be addressed this
// way. Everyone currently online except the sender gets the unread flag;
// flagging is best-effort per recipient.
func (s *MessageService) SendRoom(ctx context.Context, session *models.Session, room int64, content string) (*models.Message, error) {
	msg, err := models.NewRoomMessage(session.UserID, room, content)
	if err != nil {
		return nil, err
	}

	saved, err := s.persist(ctx, msg)
	if err != nil {
		return nil, err
	}

	online, err := s.presence.ListOnline()
	if err != nil {
		logger.Warn("Error listing online users for room %d unread flags: %v", saved.Room, err)
	}
	for _, id := range online {
		if id == session.UserID {
			continue
		}
		if err := s.presence.AddUnread(id, saved.Room); err != nil {
			logger.Warn("Error flagging unread for user %d room %d: %v", id, saved.Room, err)
		}
	}

	s.hub.Publish(models.RoomChannel(saved.Room), models.Event{
		Event: models.EventRoomOK,
		Data:  saved,
	})

	return saved, nil
}

// History returns one page of a conversation, most recent first. Giving a
// receiver id resolves the direct room with the requester as the other
// party; otherwise the explicit room (or the common room) is used.
// Viewing a room marks it read for the requester.
func (s *MessageService) History(ctx context.Context, session *models.Session, payload models.ListMessagePayload) (*models.MessagePage, error) {
	var room int64
	switch {
	case payload.ReceiverID != nil:
		if *payload.ReceiverID <= 0 {
			return nil, apperrors.ErrReceiverRequired
		}
		if *payload.ReceiverID > chat.MaxID {
			return nil, apperrors.ErrReceiverOutOfRange
		}
		room = chat.RoomOf(session.UserID, *payload.ReceiverID)
	case payload.Room != nil:
		if *payload.Room < 0 {
			return nil, apperrors.ErrRoomInvalid
		}
		room = *payload.Room
	default:
		room = chat.CommonRoom
	}

	filter := models.MessageFilter{
		BaseFilter: models.NewBaseFilter(payload.Skip, payload.Limit, s.defaultLimit, s.maxLimit),
		Room:       room,
		Keyword:    payload.Keyword,
	}

	messages, total, err := s.messages.FindMessages(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable("message store unavailable", err)
	}

	// reading a room clears its unread flag; cleanup is best-effort
	if _, err := s.presence.RemoveUnread(session.UserID, room); err != nil {
		logger.Warn("Error clearing unread for user %d room %d: %v", session.UserID, room, err)
	}

	return &models.MessagePage{
		Pagination: models.Pagination{Skip: filter.Skip, Limit: filter.Limit, Total: total},
		Results:    messages,
	}, nil
}

// Members lists the participants visible to the requester, each enriched
// with its online flag and whether the requester has unread content from
// it. An empty presence store just means every flag is false.
func (s *MessageService) Members(ctx context.Context, session *models.Session, payload models.ListMemberPayload) (*models.MemberPage, error) {
	filter := models.MemberFilter{
		BaseFilter: models.NewBaseFilter(payload.Skip, payload.Limit, s.defaultLimit, s.maxLimit),
		Keyword:    payload.Keyword,
		MaxLevel:   s.privilegedLevel,
		ExcludeID:  session.UserID,
	}

	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable("user lookup failed", err)
	}

	online, err := s.presence.ListOnline()
	if err != nil {
		logger.Warn("Error listing online users: %v", err)
	}
	unread, err := s.presence.ListUnreadRooms(session.UserID)
	if err != nil {
		logger.Warn("Error listing unread rooms for user %d: %v", session.UserID, err)
	}

	onlineSet := lo.SliceToMap(online, func(id int64) (int64, struct{}) { return id, struct{}{} })
	unreadSet := lo.SliceToMap(unread, func(room int64) (int64, struct{}) { return room, struct{}{} })

	members := lo.Map(users, func(u *models.User, _ int) *models.Member {
		_, isOnline := onlineSet[u.ID]
		_, hasNew := unreadSet[chat.RoomOf(session.UserID, u.ID)]
		return &models.Member{
			ID:            u.ID,
			Username:      u.Username,
			Email:         u.Email,
			IsOnline:      isOnline,
			HasNewMessage: hasNew,
		}
	})

	return &models.MemberPage{
		Pagination: models.Pagination{Skip: filter.Skip, Limit: filter.Limit, Total: total},
		Results:    members,
	}, nil
}

// MarkRead clears the requester's unread flag for a room and reports
// whether a flag was actually cleared.
func (s *MessageService) MarkRead(ctx context.Context, session *models.Session, room int64) (bool, error) {
	if room < 0 {
		return false, apperrors.ErrRoomInvalid
	}
	return s.presence.RemoveUnread(session.UserID, room)
}

func (s *MessageService) persist(ctx context.Context, msg *models.Message) (*models.Message, error) {
	id, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, apperrors.Unavailable("message store unavailable", err)
	}
	if id == 0 {
		return nil, apperrors.ErrCannotSave
	}

	// reload to pick up server-assigned timestamps and denormalized
	// sender/receiver names
	saved, err := s.messages.GetMessageByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable("message store unavailable", err)
	}
	return saved, nil
}
