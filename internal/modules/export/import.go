package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/pkg/apperror"
	"go.uber.org/zap"
)

// Store is the part of the submission store the importer writes through.
type Store interface {
	Create(ctx context.Context, sub *entity.Submission) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type OwnerLookup interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type Importer struct {
	store  Store
	owners OwnerLookup
	logger *zap.Logger
	now    func() time.Time
}

func NewImporter(store Store, owners OwnerLookup, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, owners: owners, logger: logger, now: time.Now}
}

// Import reads a legacy submissions file. Columns are matched by header name,
// rows without a plant name or with an existing id are skipped, and each row is
// saved in its own transaction.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return result, fmt.Errorf("%w: read header: %v", apperror.ErrInvalidInput, err)
	}
	cols := indexHeader(header)
	if _, ok := cols["Plant Name"]; !ok {
		return result, fmt.Errorf("%w: missing Plant Name column", apperror.ErrInvalidInput)
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("%w: line %d: %v", apperror.ErrInvalidInput, line, err)
		}

		row := rowReader{cols: cols, record: record}
		sub, ok, err := im.toSubmission(ctx, row)
		if err != nil {
			return result, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			result.Skipped++
			continue
		}

		if err := im.store.Create(ctx, sub); err != nil {
			if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrInvalidInput) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("line %d: %w", line, err)
		}
		result.Imported++
	}

	im.logger.Info("legacy import finished", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (im *Importer) toSubmission(ctx context.Context, row rowReader) (*entity.Submission, bool, error) {
	plantName := row.get("Plant Name")
	if plantName == "" {
		return nil, false, nil
	}

	id := row.get("ID")
	if id == "" {
		id = entity.NewSubmissionID()
	}
	exists, err := im.store.ExistsByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, nil
	}

	submitted, err := time.Parse(timeLayout, row.get("Time"))
	if err != nil {
		submitted = im.now().UTC()
	}

	sub := &entity.Submission{
		ID:             id,
		SubmissionTime: submitted,
		PlantName:      plantName,
		EntryTitle:     row.get("Entry Title"),
		LocalNames:     row.get("Local Names"),
		ScientificName: row.get("Scientific Name"),
		Category:       row.get("Category"),
		UsageDesc:      row.get("Usage Description"),
		PrepMethod:     row.get("Preparation Method"),
		Community:      row.get("Community"),
		Tags:           row.get("Tags"),
		Location:       row.get("Location"),
		Language:       row.get("Language"),
		AgeGroup:       row.get("Age Group"),
		SubmitterRole:  row.get("Role"),
		SubmitterName:  row.get("Name"),
		ContactInfo:    row.get("Contact"),
		Consent:        entity.NormalizeConsent(row.get("Consent")),
		PhotoPath:      row.get("Photo Path"),
		VoicePath:      row.get("Voice Path"),
		NotesPath:      row.get("Notes Path"),
	}
	sub.Latitude, sub.Longitude = parseCoords(row.get("Latitude"), row.get("Longitude"))
	sub.UserID = im.resolveOwner(ctx, row.get("User ID"))

	return sub, true, nil
}

// resolveOwner keeps a legacy owner only when that account exists here.
func (im *Importer) resolveOwner(ctx context.Context, raw string) *uint {
	if raw == "" || im.owners == nil {
		return nil
	}
	parsed, err := strconv.ParseUint(strings.TrimSuffix(raw, ".0"), 10, 64)
	if err != nil || parsed == 0 {
		return nil
	}
	id := uint(parsed)
	if _, err := im.owners.FindByID(ctx, id); err != nil {
		im.logger.Warn("legacy owner not found, importing as anonymous", zap.Uint("user_id", id))
		return nil
	}
	return &id
}

// parseCoords treats the legacy 0,0 default as no coordinates.
func parseCoords(latRaw, lonRaw string) (*float64, *float64) {
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lon, errLon := strconv.ParseFloat(lonRaw, 64)
	if errLat != nil || errLon != nil || (lat == 0 && lon == 0) {
		return nil, nil
	}
	return &lat, &lon
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		cols[name] = i
	}
	return cols
}

type rowReader struct {
	cols   map[string]int
	record []string
}

func (r rowReader) get(column string) string {
	i, ok := r.cols[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}
