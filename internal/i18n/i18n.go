// Package i18n holds the typed message catalog used by every response.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

type Key string

const (
	ErrInvalidInput Key = "error.invalid_input"
	ErrUnauthorized Key = "error.unauthorized"
	ErrNotFound     Key = "error.not_found"
	ErrConflict     Key = "error.conflict"
	ErrStorageBusy  Key = "error.storage_busy"
	ErrAttachment   Key = "error.attachment"
	ErrRateLimited  Key = "error.rate_limited"
	ErrInternal     Key = "error.internal"

	ErrInvalidCredentials Key = "auth.invalid_credentials"
	ErrUsernameTaken      Key = "auth.username_taken"
	ErrEmailTaken         Key = "auth.email_taken"
	ErrPasswordMismatch   Key = "auth.password_mismatch"
	ErrPasswordTooShort   Key = "auth.password_too_short"
	ErrPasswordTooLong    Key = "auth.password_too_long"
	ErrInvalidEmail       Key = "auth.invalid_email"
	ErrPlantNameRequired  Key = "submission.plant_name_required"

	FieldRequired Key = "validation.required"
	FieldEmail    Key = "validation.email"
	FieldMin      Key = "validation.min"
	FieldMax      Key = "validation.max"
	FieldOneOf    Key = "validation.oneof"
	FieldEqual    Key = "validation.eqfield"
	FieldInvalid  Key = "validation.invalid"

	StatusPublic  Key = "submission.status_public"
	StatusPrivate Key = "submission.status_private"

	MsgRegistered  Key = "auth.registered"
	MsgLoggedIn    Key = "auth.logged_in"
	MsgProfileSave Key = "profile.saved"
	MsgSubmitted   Key = "submission.saved"
	MsgNoLocation  Key = "geo.not_found"
)

// Base is the language every lookup falls back to.
var Base = language.English

type Catalog map[language.Tag]map[Key]string

var catalog = Catalog{
	language.English:    english,
	language.Hindi:      hindi,
	language.Indonesian: indonesian,
}

var supported = []language.Tag{language.English, language.Hindi, language.Indonesian}

var matcher = language.NewMatcher(supported)

// Supported lists the shipped languages, base language first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// T returns the message for key in lang. Missing languages and keys fall back
// to the base language; a key unknown everywhere renders as itself.
func T(lang language.Tag, key Key) string {
	return catalog.Lookup(lang, key)
}

// Tf formats the message for key with args.
func Tf(lang language.Tag, key Key, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

func (c Catalog) Lookup(lang language.Tag, key Key) string {
	if msgs, ok := c[lang]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	if base, conf := lang.Base(); conf != language.No {
		if msgs, ok := c[language.Make(base.String())]; ok {
			if s, ok := msgs[key]; ok {
				return s
			}
		}
	}
	if s, ok := c[Base][key]; ok {
		return s
	}
	return string(key)
}

// Match picks a supported language. An explicit query value wins over the
// Accept-Language header; fallback is used when neither matches.
func Match(query, acceptLanguage string, fallback language.Tag) language.Tag {
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			if _, idx, conf := matcher.Match(tag); conf != language.No {
				return supported[idx]
			}
		}
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx]
			}
		}
	}
	return fallback
}

// Parse resolves a configured language name, defaulting to Base.
func Parse(name string) language.Tag {
	return Match(name, "", Base)
}

// Error attaches a message key to err so responses can render a more specific
// message than the error class alone.
type Error struct {
	Key Key
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func Wrap(key Key, err error) error {
	return &Error{Key: key, Err: err}
}
