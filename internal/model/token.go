package model

import "github.com/google/uuid"

// TokenManager generates and validates access/refresh tokens.
// Access and refresh tokens are signed with distinct secrets so one kind
// can never be presented in place of the other.
type TokenManager interface {
	GenerateAccessToken(user User) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
}
