package entity

import (
	"time"

	"github.com/google/uuid"
)

// Consent values. Anything else, including the empty string, is private.
const (
	ConsentGrant = "grant"
	ConsentDeny  = "deny"
)

// Consent labels found in legacy CSV files.
const (
	LegacyConsentGrant = "Yes, I give permission (anonymously)"
	LegacyConsentDeny  = "No, keep private"
)

type Submission struct {
	ID             string    `gorm:"size:16;primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	User           *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	SubmissionTime time.Time `gorm:"index;not null" json:"submission_time"`
	PlantName      string    `gorm:"size:255;not null" json:"plant_name"`
	EntryTitle     string    `gorm:"size:255" json:"entry_title"`
	LocalNames     string    `gorm:"type:text" json:"local_names"`
	ScientificName string    `gorm:"size:255" json:"scientific_name"`
	Category       string    `gorm:"size:255" json:"category"`
	UsageDesc      string    `gorm:"type:text" json:"usage_desc"`
	PrepMethod     string    `gorm:"type:text" json:"prep_method"`
	Community      string    `gorm:"size:255" json:"community"`
	Tags           string    `gorm:"size:500" json:"tags"`
	Location       string    `gorm:"size:500" json:"location"`
	Language       string    `gorm:"size:100" json:"language"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	PhotoPath      string    `gorm:"size:500" json:"photo_path"`
	VoicePath      string    `gorm:"size:500" json:"voice_path"`
	NotesPath      string    `gorm:"size:500" json:"notes_path"`
	AgeGroup       string    `gorm:"size:20" json:"age_group"`
	SubmitterRole  string    `gorm:"size:100" json:"submitter_role"`
	SubmitterName  string    `gorm:"size:100" json:"submitter_name"`
	ContactInfo    string    `gorm:"size:255" json:"contact_info"`
	Consent        string    `gorm:"size:10;index" json:"consent"`
}

// IsPublic reports whether the record belongs to the public set.
func (s *Submission) IsPublic() bool {
	return s.Consent == ConsentGrant
}

// OwnedBy reports whether userID is the record's owner. Anonymous records
// have no owner.
func (s *Submission) OwnedBy(userID *uint) bool {
	return userID != nil && s.UserID != nil && *s.UserID == *userID
}

// NormalizeConsent maps current and legacy consent labels onto the stored
// values. Unrecognized input becomes "" which is treated as private.
func NormalizeConsent(raw string) string {
	switch raw {
	case ConsentGrant, LegacyConsentGrant:
		return ConsentGrant
	case ConsentDeny, LegacyConsentDeny:
		return ConsentDeny
	default:
		return ""
	}
}

// VisibleContact returns the contact details for the owner and "" for anyone
// else. The owner must have been loaded: a record whose owner account no
// longer exists never shows its contact.
func (s *Submission) VisibleContact(viewer *uint) string {
	if !s.OwnedBy(viewer) || s.User == nil || s.User.ID != *s.UserID {
		return ""
	}
	return s.ContactInfo
}

// SubmissionIDLength is the length of generated submission ids.
const SubmissionIDLength = 8

// NewSubmissionID returns a short random id. Callers must check it is unused.
func NewSubmissionID() string {
	return uuid.NewString()[:SubmissionIDLength]
}
