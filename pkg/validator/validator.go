package validator

import (
	"errors"
	"strings"

	"anoa.com/plantspeak/internal/i18n"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// FormatValidationError renders binding errors as one localized sentence.
func FormatValidationError(err error, lang language.Tag) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError, lang))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError, lang language.Tag) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return i18n.Tf(lang, i18n.FieldRequired, field)
	case "email":
		return i18n.Tf(lang, i18n.FieldEmail, field)
	case "min":
		return i18n.Tf(lang, i18n.FieldMin, field, fe.Param())
	case "max":
		return i18n.Tf(lang, i18n.FieldMax, field, fe.Param())
	case "oneof":
		return i18n.Tf(lang, i18n.FieldOneOf, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return i18n.Tf(lang, i18n.FieldEqual, field, getFieldName(fe.Param()))
	default:
		return i18n.Tf(lang, i18n.FieldInvalid, field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":        "Username",
		"Email":           "Email",
		"Password":        "Password",
		"PasswordConfirm": "Password confirmation",
		"Name":            "Name",
		"PlantName":       "Plant name",
		"AgeGroup":        "Age group",
		"Consent":         "Consent",
		"Latitude":        "Latitude",
		"Longitude":       "Longitude",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
