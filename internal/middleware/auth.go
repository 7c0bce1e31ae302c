package middleware

import (
	"strings"

	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

type AuthMiddleware struct {
	tokens      *session.Tokens
	defaultLang language.Tag
}

func NewAuthMiddleware(tokens *session.Tokens, defaultLang language.Tag) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:      tokens,
		defaultLang: defaultLang,
	}
}

// Session builds the request session. A missing or invalid token leaves the
// request anonymous; RequireAuth decides whether that is acceptable.
func (m *AuthMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i18n.Match(c.Query("lang"), c.GetHeader("Accept-Language"), m.defaultLang)
		sess := session.Anonymous(lang)
		sess.ClientIP = c.ClientIP()

		if tokenString := bearerToken(c); tokenString != "" {
			if userID, username, err := m.tokens.Parse(tokenString); err == nil {
				sess.UserID = &userID
				sess.Username = username
				sess.View = session.ViewEntry
			}
		}

		session.Set(c, sess)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.From(c).IsAuthenticated() {
			response.ResponseError(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// WithView records which screen the route group belongs to.
func WithView(view session.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.From(c)
		if sess.IsAuthenticated() {
			sess.View = view
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
