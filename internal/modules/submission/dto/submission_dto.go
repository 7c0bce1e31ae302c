package dto

import (
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/i18n"
	common "anoa.com/plantspeak/pkg/dto"
	"golang.org/x/text/language"
)

// CreateSubmissionInput is bound from the multipart entry form. Categories
// arrive as repeated "category" fields.
type CreateSubmissionInput struct {
	PlantName      string   `form:"plant_name" json:"plant_name" binding:"required,max=255"`
	EntryTitle     string   `form:"entry_title" json:"entry_title" binding:"max=255"`
	LocalNames     string   `form:"local_names" json:"local_names"`
	ScientificName string   `form:"scientific_name" json:"scientific_name" binding:"max=255"`
	Categories     []string `form:"category" json:"categories"`
	UsageDesc      string   `form:"usage_desc" json:"usage_desc"`
	PrepMethod     string   `form:"prep_method" json:"prep_method"`
	Community      string   `form:"community" json:"community" binding:"max=255"`
	Tags           string   `form:"tags" json:"tags" binding:"max=500"`
	Location       string   `form:"location" json:"location" binding:"max=500"`
	Language       string   `form:"language" json:"language" binding:"max=100"`
	Latitude       *float64 `form:"latitude" json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `form:"longitude" json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	AgeGroup       string   `form:"age_group" json:"age_group" binding:"max=20"`
	SubmitterRole  string   `form:"submitter_role" json:"submitter_role" binding:"max=100"`
	SubmitterName  string   `form:"submitter_name" json:"submitter_name" binding:"max=100"`
	ContactInfo    string   `form:"contact_info" json:"contact_info" binding:"max=255"`
	Consent        string   `form:"consent" json:"consent" binding:"omitempty,oneof=grant deny"`
}

type ListFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Mine     bool   `form:"mine"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize clamps pagination to its allowed range.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

type SubmissionResponse struct {
	ID             string            `json:"id"`
	SubmissionTime time.Time         `json:"submission_time"`
	PlantName      string            `json:"plant_name"`
	EntryTitle     string            `json:"entry_title"`
	LocalNames     string            `json:"local_names"`
	ScientificName string            `json:"scientific_name"`
	Categories     []string          `json:"categories"`
	UsageDesc      string            `json:"usage_desc"`
	PrepMethod     string            `json:"prep_method"`
	Community      string            `json:"community"`
	Tags           string            `json:"tags"`
	Location       string            `json:"location"`
	Language       string            `json:"language"`
	Latitude       *float64          `json:"latitude"`
	Longitude      *float64          `json:"longitude"`
	AgeGroup       string            `json:"age_group"`
	SubmitterRole  string            `json:"submitter_role"`
	SubmitterName  string            `json:"submitter_name"`
	ContactInfo    string            `json:"contact_info,omitempty"`
	Status         string            `json:"status"`
	StatusLabel    string            `json:"status_label"`
	Owned          bool              `json:"owned"`
	Attachments    map[string]string `json:"attachments,omitempty"`
}

// NewSubmissionResponse is the only way a record leaves the service, so
// contact redaction happens here and nowhere else.
func NewSubmissionResponse(sub *entity.Submission, viewer *uint, lang language.Tag) SubmissionResponse {
	status, label := "private", i18n.StatusPrivate
	if sub.IsPublic() {
		status, label = "public", i18n.StatusPublic
	}

	res := SubmissionResponse{
		ID:             sub.ID,
		SubmissionTime: sub.SubmissionTime,
		PlantName:      sub.PlantName,
		EntryTitle:     sub.EntryTitle,
		LocalNames:     sub.LocalNames,
		ScientificName: sub.ScientificName,
		Categories:     entity.SplitCategories(sub.Category),
		UsageDesc:      sub.UsageDesc,
		PrepMethod:     sub.PrepMethod,
		Community:      sub.Community,
		Tags:           sub.Tags,
		Location:       sub.Location,
		Language:       sub.Language,
		Latitude:       sub.Latitude,
		Longitude:      sub.Longitude,
		AgeGroup:       sub.AgeGroup,
		SubmitterRole:  sub.SubmitterRole,
		SubmitterName:  sub.SubmitterName,
		ContactInfo:    sub.VisibleContact(viewer),
		Status:         status,
		StatusLabel:    i18n.T(lang, label),
		Owned:          sub.OwnedBy(viewer),
	}

	attachments := map[string]string{}
	for kind, path := range map[string]string{"photo": sub.PhotoPath, "voice": sub.VoicePath, "notes": sub.NotesPath} {
		if path != "" {
			attachments[kind] = "/api/submissions/" + sub.ID + "/media/" + kind
		}
	}
	if len(attachments) > 0 {
		res.Attachments = attachments
	}
	return res
}

type ListResponse struct {
	Items      []SubmissionResponse  `json:"items"`
	Meta       common.PaginationMeta `json:"meta"`
	Categories []string              `json:"categories"`
}

type VocabularyResponse struct {
	Categories []string `json:"categories"`
	AgeGroups  []string `json:"age_groups"`
	Consent    []string `json:"consent"`
}
