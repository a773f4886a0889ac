package handlers

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Message is a one-shot notice shown on the next rendered page.
type Message struct {
	Level Level
	Text  string
}

func init() {
	gob.Register(Message{})
}

const flashSession = "flash"

// Flash keeps pending messages in a signed cookie.
type Flash struct {
	Store  sessions.Store
	Logger *logrus.Logger
}

func NewFlash(secret string, secure bool, logger *logrus.Logger) *Flash {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flash{Store: store, Logger: logger}
}

// Add queues a message. It must run before the response body is written.
func (f *Flash) Add(c *gin.Context, level Level, text string) {
	s, err := f.Store.Get(c.Request, flashSession)
	if err != nil {
		// a tampered or stale cookie yields a fresh session
		f.Logger.WithError(err).Debug("flash cookie rejected")
	}
	s.AddFlash(Message{Level: level, Text: text})
	if err := s.Save(c.Request, c.Writer); err != nil {
		f.Logger.WithError(err).Warn("flash save failed")
	}
}

// Pop returns and clears the queued messages, including ones added
// earlier in the same request. The response carries at most one flash
// cookie: messages added and shown in this request never reach the browser.
func (f *Flash) Pop(c *gin.Context) []Message {
	s, _ := f.Store.Get(c.Request, flashSession)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	dropSetCookie(c.Writer.Header(), flashSession)
	if _, err := c.Request.Cookie(flashSession); err == nil {
		if err := s.Save(c.Request, c.Writer); err != nil {
			f.Logger.WithError(err).Warn("flash save failed")
		}
	}
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(Message); ok {
			out = append(out, m)
		}
	}
	return out
}

// dropSetCookie removes pending Set-Cookie headers for name.
func dropSetCookie(h http.Header, name string) {
	prefix := name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		h.Del("Set-Cookie")
		return
	}
	h["Set-Cookie"] = kept
}
