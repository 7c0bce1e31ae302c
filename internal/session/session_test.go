package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLandingView(t *testing.T) {
	id := uint(7)

	assert.Equal(t, ViewLogin, Anonymous(language.English).LandingView())
	assert.Equal(t, ViewEntry, (&Context{UserID: &id, View: ViewLogin}).LandingView())
	assert.Equal(t, ViewProfile, (&Context{UserID: &id, View: ViewProfile}).LandingView())
}

func TestViewerIsACopy(t *testing.T) {
	id := uint(7)
	s := &Context{UserID: &id}

	v := s.Viewer()
	*v = 8
	assert.Equal(t, uint(7), *s.UserID)
	assert.Nil(t, Anonymous(language.English).Viewer())
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	signed, expiresAt, err := tokens.Issue(42, "asha")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	id, username, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "asha", username)
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	signed, _, err := tokens.Issue(42, "asha")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, _, err := NewTokens("other", time.Hour).Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokens("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, _, err := late.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
