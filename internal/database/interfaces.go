package database

import (
	"context"

	"chat-service/internal/models"
	apperrors "chat-service/pkg/errors"
)

// ErrNotFound is returned by lookups when no row matches. Callers decide
// whether absence is a client error or a gate rejection.
var ErrNotFound = apperrors.NotFound("record not found")

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.MemberFilter) ([]*models.User, int64, error)
}

type MessageRepository interface {
	// CreateMessage persists a message and returns its assigned id.
	CreateMessage(ctx context.Context, msg *models.Message) (int64, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	// FindMessages returns one page plus the total match count,
	// most recent first.
	FindMessages(ctx context.Context, filter models.MessageFilter) ([]*models.Message, int64, error)
}

type Database interface {
	UserRepository
	MessageRepository
	Close() error
}
