package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for user accounts.
// Uniqueness of username and email is enforced by the store.
type UserStore interface {
	GetByLogin(ctx context.Context, login string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
}

// User represents a stored account. Username and email are kept lower-cased.
// RefreshToken holds the single refresh token currently valid for the
// account; nil means no active session.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	CoverURL     string
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the externally visible view of an account. It never carries
// the password hash or the refresh token.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the user stripped of credential material.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
	}
}
