package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
)

// cookieWriter sets and clears the HttpOnly token cookies.
type cookieWriter struct {
	domain string
	secure bool
}

func newCookieWriter(cfg config.CookieConfig) cookieWriter {
	return cookieWriter{domain: cfg.Domain, secure: cfg.Secure}
}

func (w cookieWriter) set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", w.domain, w.secure, true)
}

func (w cookieWriter) clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", w.domain, w.secure, true)
}
