package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"role_id"`
	RoleLevel    int       `json:"role_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// Member is a participant row in the member list, enriched with the
// requester-relative presence flags.
type Member struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	IsOnline      bool   `json:"isOnline"`
	HasNewMessage bool   `json:"hasNewMessage"`
}

// Session is the identity of a joined connection. It is established once
// by the gate and threaded explicitly through every handler call; nothing
// is attached to the transport object.
type Session struct {
	ConnID    string
	UserID    int64
	Username  string
	RoleID    int64
	RoleLevel int
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
