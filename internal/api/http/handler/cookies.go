package handler

import (
	"net/http"

	"github.com/vidstream/identity/internal/service"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// setSessionCookies stores the token pair as httpOnly, secure cookies.
func setSessionCookies(w http.ResponseWriter, pair service.TokenPair) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, pair.AccessToken, 0))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, pair.RefreshToken, 0))
}

// clearSessionCookies expires both session cookies.
func clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
