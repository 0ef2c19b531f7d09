package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vidstream/identity/internal/logger"
	"github.com/vidstream/identity/internal/model"
	"github.com/vidstream/identity/internal/service"
)

// maxUploadSize bounds the multipart form kept in memory during register.
const maxUploadSize = 32 << 20

// UserService defines the session lifecycle operations.
type UserService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.PublicUser, error)
	Login(ctx context.Context, params service.LoginParams) (service.Session, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
}

// Users handles the HTTP endpoints for account and session management.
type Users struct {
	service        UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(service UserService, contextManager model.ContextManager, logger *logger.Logger) *Users {
	return &Users{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register handles POST /register. The body is multipart/form-data with the
// text fields plus an avatar file part (required) and a coverImage part
// (optional). Uploaded parts are spooled to temp files which never outlive
// the request.
func (h *Users) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, service.ErrFieldsRequired)
		return
	}

	avatarPath, err := h.spoolFile(r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}
	coverPath, err := h.spoolFile(r, "coverImage")
	if err != nil {
		writeError(w, err)
		return
	}

	// The media layer removes a file it was asked to upload; anything left
	// behind by an earlier failure is cleaned here.
	defer removeIfPresent(avatarPath, coverPath)

	params := service.RegisterParams{
		FullName:   r.FormValue("fullName"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	}

	user, err := h.service.Register(r.Context(), params)
	if err != nil {
		h.logger.Info("register failed",
			"username", params.Username,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /login with a JSON body carrying username or email
// plus the password. On success both tokens are returned in the body and as
// httpOnly cookies.
func (h *Users) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, service.ErrMissingLogin)
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	session, err := h.service.Login(r.Context(), service.LoginParams{
		Login:    login,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Info("login failed",
			"error", err.Error())
		writeError(w, err)
		return
	}

	setSessionCookies(w, session.Tokens)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:         session.User,
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "logged in successfully")
}

// Logout handles POST /logout. The authentication middleware has already
// validated the access token and put the user ID into context.
func (h *Users) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, service.ErrInvalidToken)
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	clearSessionCookies(w)
	writeJSON(w, http.StatusOK, nil, "logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /refresh-token. The refresh token is taken from the
// session cookie, falling back to the JSON body.
func (h *Users) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			tokenString = req.RefreshToken
		}
	}

	pair, err := h.service.Refresh(r.Context(), tokenString)
	if err != nil {
		h.logger.Info("token refresh failed",
			"error", err.Error())
		writeError(w, err)
		return
	}

	setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed successfully")
}

// spoolFile copies a multipart file part to a temp file and returns its
// path. A missing part yields an empty path, not an error.
func (h *Users) spoolFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", service.ErrFieldsRequired
	}
	defer file.Close()

	return spoolToTemp(file, header.Filename)
}

func spoolToTemp(file multipart.File, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func removeIfPresent(paths ...string) {
	for _, path := range paths {
		if path != "" {
			os.Remove(path)
		}
	}
}
