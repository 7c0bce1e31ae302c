// Package session carries the per-request identity, language and view.
package session

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

type View string

const (
	ViewLogin       View = "login"
	ViewEntry       View = "entry"
	ViewSubmissions View = "submissions"
	ViewProfile     View = "profile"
)

// Context is built for every request and never shared between requests.
type Context struct {
	UserID   *uint
	Username string
	Language language.Tag
	View     View
	ClientIP string
}

func Anonymous(lang language.Tag) *Context {
	return &Context{Language: lang, View: ViewLogin}
}

func (s *Context) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

// Viewer returns the id used for visibility decisions, nil when anonymous.
func (s *Context) Viewer() *uint {
	if s == nil || s.UserID == nil {
		return nil
	}
	id := *s.UserID
	return &id
}

// LandingView is the view a client should render next.
func (s *Context) LandingView() View {
	if !s.IsAuthenticated() {
		return ViewLogin
	}
	if s.View == "" || s.View == ViewLogin {
		return ViewEntry
	}
	return s.View
}

const ginKey = "session"

func Set(c *gin.Context, s *Context) {
	c.Set(ginKey, s)
}

// From returns the request session; requests that skipped the middleware get
// an anonymous one.
func From(c *gin.Context) *Context {
	if v, ok := c.Get(ginKey); ok {
		if s, ok := v.(*Context); ok {
			return s
		}
	}
	return Anonymous(language.English)
}
