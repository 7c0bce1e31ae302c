// Package export converts submissions to and from the legacy CSV layout.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"anoa.com/plantspeak/internal/entity"
)

const timeLayout = "2006-01-02 15:04:05"

// Header is the column layout of the legacy submissions file.
var Header = []string{
	"ID", "Time", "Plant Name", "Entry Title", "Local Names", "Scientific Name",
	"Category", "Usage Description", "Preparation Method", "Community", "Tags",
	"Location", "Language", "Latitude", "Longitude", "Age Group", "Role", "Name",
	"Contact", "Consent", "Photo Path", "Voice Path", "Notes Path", "User ID",
}

// WriteCSV writes the header and one row per record. Contact cells follow the
// same redaction rule as the API.
func WriteCSV(w io.Writer, subs []entity.Submission, viewer *uint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range subs {
		if err := cw.Write(Row(&subs[i], viewer)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func Row(sub *entity.Submission, viewer *uint) []string {
	return []string{
		sub.ID,
		sub.SubmissionTime.UTC().Format(timeLayout),
		sub.PlantName,
		sub.EntryTitle,
		sub.LocalNames,
		sub.ScientificName,
		sub.Category,
		sub.UsageDesc,
		sub.PrepMethod,
		sub.Community,
		sub.Tags,
		sub.Location,
		sub.Language,
		formatFloat(sub.Latitude),
		formatFloat(sub.Longitude),
		sub.AgeGroup,
		sub.SubmitterRole,
		sub.SubmitterName,
		sub.VisibleContact(viewer),
		legacyConsent(sub.Consent),
		sub.PhotoPath,
		sub.VoicePath,
		sub.NotesPath,
		formatOwner(sub.UserID),
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOwner(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func legacyConsent(consent string) string {
	switch consent {
	case entity.ConsentGrant:
		return entity.LegacyConsentGrant
	case entity.ConsentDeny:
		return entity.LegacyConsentDeny
	default:
		return ""
	}
}
