package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const clearedCookieValue = "none"

// CookieSettings describes the session cookie
type CookieSettings struct {
	Name   string
	Secure bool
}

// DefaultCookieSettings uses the "token" cookie
func DefaultCookieSettings(secure bool) CookieSettings {
	return CookieSettings{Name: "token", Secure: secure}
}

// SetSessionCookie stores token as an HttpOnly cookie
func SetSessionCookie(c *gin.Context, settings CookieSettings, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		settings.Name,   // name
		token,           // value
		maxAge,          // max age in seconds
		"/",             // path
		"",              // domain
		settings.Secure, // secure (HTTPS only)
		true,            // httpOnly (not accessible via JS)
	)
}

// ClearSessionCookie overwrites the cookie with a placeholder that expires in ten seconds
func ClearSessionCookie(c *gin.Context, settings CookieSettings) {
	SetSessionCookie(c, settings, clearedCookieValue, 10)
}
