package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestT(t *testing.T) {
	assert.Equal(t, "Nama tanaman wajib diisi.", T(language.Indonesian, ErrPlantNameRequired))
	assert.Equal(t, "निजी", T(language.Hindi, StatusPrivate))

	t.Run("missing key falls back to base language", func(t *testing.T) {
		assert.Equal(t, "Location not found.", T(language.Indonesian, MsgNoLocation))
	})

	t.Run("unsupported language falls back to base language", func(t *testing.T) {
		assert.Equal(t, "Public", T(language.Japanese, StatusPublic))
	})

	t.Run("regional variant uses its base language", func(t *testing.T) {
		assert.Equal(t, "Publik", T(language.MustParse("id-ID"), StatusPublic))
	})

	t.Run("unknown key renders as itself", func(t *testing.T) {
		assert.Equal(t, "no.such.key", T(language.English, Key("no.such.key")))
	})
}

func TestCatalogsCoverBaseKeys(t *testing.T) {
	for key := range english {
		_, ok := hindi[key]
		assert.True(t, ok, "hindi is missing %s", key)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		accept string
		want   language.Tag
	}{
		{"query wins", "hi", "id-ID,id;q=0.9", language.Hindi},
		{"accept language", "", "id-ID,id;q=0.9,en;q=0.5", language.Indonesian},
		{"unsupported falls back", "", "ja-JP", language.English},
		{"garbage query ignored", "!!", "hi-IN", language.Hindi},
		{"nothing given", "", "", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, tt.accept, language.English))
		})
	}
}
