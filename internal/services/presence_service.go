package services

import (
	"context"
	"errors"

	"chat-service/internal/auth"
	"chat-service/internal/chat"
	"chat-service/internal/database"
	"chat-service/internal/models"
	"chat-service/internal/presence"
	apperrors "chat-service/pkg/errors"
	"chat-service/pkg/logger"
)

// Publisher is the channel registry the transport provides: connections
// subscribe to named channels and events fan out to every subscriber.
type Publisher interface {
	Subscribe(connID, channel string)
	Unsubscribe(connID, channel string)
	Publish(channel string, event models.Event)
}

// Authenticator verifies a bearer credential and yields its claims.
type Authenticator interface {
	Verify(token string) (*auth.TokenClaims, error)
}

// PresenceService is the gate between a raw connection and a joined
// participant. Join walks the connection through authentication, profile
// resolution and presence registration; any failure along the way rejects
// the connection outright.
type PresenceService struct {
	auth            Authenticator
	users           database.UserRepository
	presence        presence.Store
	hub             Publisher
	privilegedLevel int
}

func NewPresenceService(authSvc Authenticator, users database.UserRepository, store presence.Store, hub Publisher, privilegedLevel int) *PresenceService {
	return &PresenceService{
		auth:            authSvc,
		users:           users,
		presence:        store,
		hub:             hub,
		privilegedLevel: privilegedLevel,
	}
}

// Join authenticates the connection, loads the participant's profile,
// marks it online and subscribes it to its private channel and the common
// room. Participants below the privileged level are announced to everyone
// already joined; privileged roles never appear in presence events.
//
// An empty or malformed credential fails before any store is touched.
func (s *PresenceService) Join(ctx context.Context, connID, token string) (*models.Session, error) {
	claims, err := s.auth.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Unavailable("user lookup failed", err)
	}

	if err := s.presence.AddOnline(user.ID); err != nil {
		return nil, err
	}

	s.hub.Subscribe(connID, models.UserChannel(user.ID))
	s.hub.Subscribe(connID, models.RoomChannel(chat.CommonRoom))

	session := &models.Session{
		ConnID:    connID,
		UserID:    user.ID,
		Username:  user.Username,
		RoleID:    user.RoleID,
		RoleLevel: user.RoleLevel,
	}

	if !s.privileged(session) {
		s.broadcastPresence(user.ID, true)
	}

	logger.Info("User %d joined (conn %s)", user.ID, connID)
	return session, nil
}

// Leave removes the participant from the online set and announces it.
// Cleanup always runs, whatever state the connection died in, so a failed
// handler cannot leave a stale online entry behind.
func (s *PresenceService) Leave(ctx context.Context, session *models.Session) {
	if session == nil {
		return
	}

	if err := s.presence.RemoveOnline(session.UserID); err != nil {
		logger.Error("Error removing user %d from online set: %v", session.UserID, err)
	}

	if !s.privileged(session) {
		s.broadcastPresence(session.UserID, false)
	}

	logger.Info("User %d left (conn %s)", session.UserID, session.ConnID)
}

func (s *PresenceService) privileged(session *models.Session) bool {
	return session.RoleLevel >= s.privilegedLevel
}

func (s *PresenceService) broadcastPresence(userID int64, online bool) {
	s.hub.Publish(models.RoomChannel(chat.CommonRoom), models.Event{
		Event: models.EventPresence,
		Data:  models.PresencePayload{ID: userID, IsOnline: online},
	})
}
