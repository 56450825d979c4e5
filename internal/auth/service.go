package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"chat-service/internal/config"
	"chat-service/internal/database"
	"chat-service/internal/models"
	apperrors "chat-service/pkg/errors"
)

// TokenClaims is what a verified bearer credential asserts about the
// connecting participant. Claims are enforced per action by the callers,
// not filtered here.
type TokenClaims struct {
	UserID int64
	RoleID int64
}

type Service struct {
	users database.UserRepository
	cfg   *config.Config
}

func NewService(users database.UserRepository, cfg *config.Config) *Service {
	return &Service{
		users: users,
		cfg:   cfg,
	}
}

// Verify validates a bearer credential and extracts its claims. An empty
// or malformed token never touches any store. Expiry is distinguishable
// from every other failure so the gate can report it precisely.
func (s *Service) Verify(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenRequired
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrTokenInvalid
		}
		return s.cfg.JWT.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid credential", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, ok := (*claims)["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, apperrors.ErrTokenInvalid
	}
	roleID, ok := (*claims)["role_id"].(float64)
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}

	return &TokenClaims{
		UserID: int64(userID),
		RoleID: int64(roleID),
	}, nil
}

// Login checks an email/password pair and issues a token for the socket.
// Account management lives elsewhere; this only mints credentials.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.Issue(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to generate token", err)
	}

	user.PasswordHash = ""

	return &models.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *Service) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role_id": user.RoleID,
		"exp":     time.Now().Add(s.cfg.JWT.ExpiresIn).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWT.Secret)
}
