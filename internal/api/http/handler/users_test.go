package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/identity/internal/api/http/httpcontext"
	"github.com/vidstream/identity/internal/model"
	"github.com/vidstream/identity/internal/service"
	"github.com/vidstream/identity/internal/testutil"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, params service.RegisterParams) (model.PublicUser, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, params service.LoginParams) (service.Session, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *mockUserService) Logout(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserService) Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(service.TokenPair), args.Error(1)
}

func newHandler(svc UserService) *Users {
	return NewUsers(svc, httpcontext.NewManager(), testutil.MakeNoopLogger())
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUsers_Register_Success(t *testing.T) {
	svc := &mockUserService{}

	var spooledAvatar string
	svc.On("Register", mock.Anything, mock.MatchedBy(func(p service.RegisterParams) bool {
		spooledAvatar = p.AvatarPath
		return p.FullName == "Ann Lee" && p.Username == "AnnL" && p.AvatarPath != "" && p.CoverPath == ""
	})).Return(model.PublicUser{ID: uuid.New(), Username: "annl"}, nil)

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Ann Lee",
			"email":    "ann@x.com",
			"username": "AnnL",
			"password": "Secret1!",
		},
		map[string]string{"avatar": "avatar.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newHandler(svc).Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    model.PublicUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "annl", resp.Data.Username)

	// The spooled temp file must not outlive the request.
	_, statErr := os.Stat(spooledAvatar)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUsers_Register_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "blank fields", err: service.ErrFieldsRequired, wantStatus: http.StatusBadRequest},
		{name: "missing avatar", err: service.ErrAvatarRequired, wantStatus: http.StatusBadRequest},
		{name: "avatar upload failed", err: service.ErrAvatarUpload, wantStatus: http.StatusBadRequest},
		{name: "duplicate user", err: service.ErrUserExists, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{}
			svc.On("Register", mock.Anything, mock.Anything).Return(model.PublicUser{}, tt.err)

			body, contentType := multipartBody(t,
				map[string]string{"fullName": "A", "email": "a@b.c", "username": "a", "password": "p"},
				map[string]string{"avatar": "avatar.png"},
			)
			req := httptest.NewRequest(http.MethodPost, "/register", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newHandler(svc).Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestUsers_Login_Success(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Login", mock.Anything, service.LoginParams{Login: "annl", Password: "Secret1!"}).
		Return(service.Session{
			User:   model.PublicUser{Username: "annl"},
			Tokens: service.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		}, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"annl","password":"Secret1!"}`))
	rec := httptest.NewRecorder()

	newHandler(svc).Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"access"`)

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "access_token")
	require.Contains(t, byName, "refresh_token")
	assert.True(t, byName["refresh_token"].HttpOnly)
	assert.True(t, byName["refresh_token"].Secure)
	assert.Equal(t, "refresh", byName["refresh_token"].Value)
}

func TestUsers_Login_EmailFallback(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Login", mock.Anything, service.LoginParams{Login: "ann@x.com", Password: "p"}).
		Return(service.Session{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ann@x.com","password":"p"}`))
	rec := httptest.NewRecorder()

	newHandler(svc).Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUsers_Login_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown account", err: service.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "wrong password", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "missing identifier", err: service.ErrMissingLogin, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockUserService{}
			svc.On("Login", mock.Anything, mock.Anything).Return(service.Session{}, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"x","password":"y"}`))
			rec := httptest.NewRecorder()

			newHandler(svc).Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestUsers_Logout(t *testing.T) {
	userID := uuid.New()
	svc := &mockUserService{}
	svc.On("Logout", mock.Anything, userID).Return(nil)

	ctxMgr := httpcontext.NewManager()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(ctxMgr.SetUserIDToContext(req.Context(), userID))
	rec := httptest.NewRecorder()

	NewUsers(svc, ctxMgr, testutil.MakeNoopLogger()).Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func TestUsers_Logout_NoIdentity(t *testing.T) {
	svc := &mockUserService{}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()

	newHandler(svc).Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestUsers_Refresh_FromCookie(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Refresh", mock.Anything, "old-refresh").
		Return(service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})
	rec := httptest.NewRecorder()

	newHandler(svc).Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"refreshToken":"new-refresh"`)
}

func TestUsers_Refresh_FromBody(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Refresh", mock.Anything, "body-refresh").
		Return(service.TokenPair{AccessToken: "a", RefreshToken: "b"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", strings.NewReader(`{"refreshToken":"body-refresh"}`))
	rec := httptest.NewRecorder()

	newHandler(svc).Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUsers_Refresh_Invalid(t *testing.T) {
	svc := &mockUserService{}
	svc.On("Refresh", mock.Anything, mock.Anything).Return(service.TokenPair{}, service.ErrInvalidToken)

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	rec := httptest.NewRecorder()

	newHandler(svc).Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
