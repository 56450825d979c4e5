package models

import (
	"time"
	"unicode/utf8"

	"chat-service/internal/chat"
	"chat-service/pkg/errors"
)

const MaxContentLength = 2000

type Message struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	ReceiverID   *int64    `json:"receiver_id,omitempty"`
	Room         int64     `json:"room"`
	Content      string    `json:"content"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewDirectMessage builds a validated message addressed to one receiver.
// The room is always derived from the pair; callers cannot pick it.
// Checks run in a fixed order (sender, receiver, content) so the first
// failure is deterministic.
func NewDirectMessage(senderID, receiverID int64, content string) (*Message, error) {
	if senderID <= 0 {
		return nil, errors.ErrSenderRequired
	}
	if senderID > chat.MaxID {
		return nil, errors.ErrSenderOutOfRange
	}
	if receiverID <= 0 {
		return nil, errors.ErrReceiverRequired
	}
	if receiverID > chat.MaxID {
		return nil, errors.ErrReceiverOutOfRange
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return &Message{
		SenderID:   senderID,
		ReceiverID: &receiverID,
		Room:       chat.RoomOf(senderID, receiverID),
		Content:    content,
	}, nil
}

// NewRoomMessage builds a validated message addressed to an explicit room.
// Only the common room may be addressed directly; a negative room is a
// validation error, any other explicit room does not exist.
func NewRoomMessage(senderID, room int64, content string) (*Message, error) {
	if senderID <= 0 {
		return nil, errors.ErrSenderRequired
	}
	if senderID > chat.MaxID {
		return nil, errors.ErrSenderOutOfRange
	}
	if room < 0 {
		return nil, errors.ErrRoomInvalid
	}
	if room != chat.CommonRoom {
		return nil, errors.ErrRoomNotFound
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	return &Message{
		SenderID: senderID,
		Room:     room,
		Content:  content,
	}, nil
}

func validateContent(content string) error {
	if content == "" {
		return errors.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return errors.ErrContentTooLong
	}
	return nil
}
