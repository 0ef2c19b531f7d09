package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/identity/internal/model"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	u := model.User{ID: uuid.New(), Username: "annl", Email: "ann@x.com"}

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u.ID, got)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	userID := uuid.New()

	refresh, err := j.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestJWT_SecretIsolation(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	u := model.User{ID: uuid.New()}

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	refresh, err := j.GenerateRefreshToken(u.ID)
	require.NoError(t, err)

	_, err = j.ParseRefreshToken(access)
	require.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = j.ParseAccessToken(refresh)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_WrongSecret(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
	other := NewJWT("other-access", "other-refresh", 15*time.Minute, 30*24*time.Hour)

	refresh, err := j.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ParseRefreshToken(refresh)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	u := model.User{ID: uuid.New()}

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = j.ParseAccessToken(access)
	require.ErrorIs(t, err, model.ErrTokenExpired)

	refresh, err := j.GenerateRefreshToken(u.ID)
	require.NoError(t, err)
	_, err = j.ParseRefreshToken(refresh)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestJWT_Garbage(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)

	_, err := j.ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = j.ParseRefreshToken("")
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}
