package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidstream/identity/internal/logger"
	"github.com/vidstream/identity/internal/model"
)

// Users orchestrates the account and session lifecycle: register, login,
// logout and refresh-token rotation.
type Users struct {
	userStore model.UserStore
	media     model.MediaStore
	tokens    model.TokenManager
	logger    *logger.Logger
}

// NewUsers creates a new Users service.
func NewUsers(
	userStore model.UserStore,
	media model.MediaStore,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Users {
	return &Users{
		userStore: userStore,
		media:     media,
		tokens:    tokens,
		logger:    logger,
	}
}

// RegisterParams carries the registration input. Avatar and cover are local
// paths of already-received upload artifacts; CoverPath may be empty.
type RegisterParams struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// LoginParams carries the login input. Login is a username or an email.
type LoginParams struct {
	Login    string
	Password string
}

// Session is the result of a successful login: the public account view plus
// a fresh token pair.
type Session struct {
	User   model.PublicUser
	Tokens TokenPair
}

// Register validates the input, uploads the avatar (mandatory) and cover
// (best effort), and creates the account. No session is established by
// registration alone.
func (s *Users) Register(ctx context.Context, params RegisterParams) (model.PublicUser, error) {
	s.logger.Debug("Users service: starting registration",
		"username", params.Username)

	for _, field := range []string{params.FullName, params.Email, params.Username, params.Password} {
		if strings.TrimSpace(field) == "" {
			return model.PublicUser{}, ErrFieldsRequired
		}
	}

	username := strings.ToLower(strings.TrimSpace(params.Username))
	email := strings.ToLower(strings.TrimSpace(params.Email))

	for _, login := range []string{username, email} {
		_, err := s.userStore.GetByLogin(ctx, login)
		if err == nil {
			s.logger.Info("Users service: user already exists",
				"login", login)
			return model.PublicUser{}, ErrUserExists
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.PublicUser{}, fmt.Errorf("failed to check existing user: %w", err)
		}
	}

	if params.AvatarPath == "" {
		return model.PublicUser{}, ErrAvatarRequired
	}

	avatarURL, err := s.media.UploadFile(ctx, params.AvatarPath)
	if err != nil {
		s.logger.Error("Users service: avatar upload failed",
			"username", username,
			"error", err.Error())
		return model.PublicUser{}, ErrAvatarUpload
	}

	var coverURL string
	if params.CoverPath != "" {
		coverURL, err = s.media.UploadFile(ctx, params.CoverPath)
		if err != nil {
			// Cover is best effort: the account is created without one.
			s.logger.Warn("Users service: cover upload failed",
				"username", username,
				"error", err.Error())
			coverURL = ""
		}
	}

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(params.FullName),
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.PublicUser{}, ErrUserExists
		}
		return model.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	created, err := s.userStore.GetByID(ctx, user.ID)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to load created user: %w", err)
	}

	s.logger.Info("Users service: registration completed",
		"username", created.Username,
		"user_id", created.ID)

	return created.Public(), nil
}

// Login verifies credentials and establishes a session: a new token pair is
// issued and the refresh token is persisted on the account.
func (s *Users) Login(ctx context.Context, params LoginParams) (Session, error) {
	login := strings.ToLower(strings.TrimSpace(params.Login))
	if login == "" {
		return Session{}, ErrMissingLogin
	}

	user, err := s.userStore.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, fmt.Errorf("failed to get user by login: %w", err)
	}

	ok, err := checkPassword(user.PasswordHash, params.Password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.Info("Users service: password mismatch",
			"user_id", user.ID)
		return Session{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("Users service: login completed",
		"user_id", user.ID)

	return Session{User: user.Public(), Tokens: pair}, nil
}

// Logout clears the stored refresh token. Logging out twice is a no-op.
func (s *Users) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	s.logger.Info("Users service: logout completed",
		"user_id", userID)

	return nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// presented token must match the one stored on the account exactly; the
// match is the sole revocation and reuse-detection check, and a fresh
// refresh token is persisted on every success (rotation).
func (s *Users) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrInvalidToken
	}

	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		// Expired and malformed both surface as unauthorized; keep the
		// distinction in the log.
		s.logger.Info("Users service: refresh token rejected",
			"reason", err.Error())
		return TokenPair{}, ErrInvalidToken
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, ErrUserNotFound
		}
		return TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if user.RefreshToken == nil || !tokensEqual(*user.RefreshToken, refreshToken) {
		s.logger.Warn("Users service: refresh token reused or superseded",
			"user_id", user.ID)
		return TokenPair{}, ErrInvalidToken
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Info("Users service: token pair rotated",
		"user_id", user.ID)

	return pair, nil
}

func (s *Users) issueTokenPair(ctx context.Context, user model.User) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.userStore.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
