package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/modules/submission/repository"
	"anoa.com/plantspeak/internal/testutil"
	"anoa.com/plantspeak/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type owners struct{ db *gorm.DB }

func (o owners) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := o.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperror.ErrNotFound
	}
	return &user, nil
}

func TestWriteCSV(t *testing.T) {
	owner := uint(7)
	lat, lon := 18.52, 73.85
	subs := []entity.Submission{
		{
			ID:             "ab12cd34",
			UserID:         &owner,
			User:           &entity.User{ID: owner, Username: "asha"},
			SubmissionTime: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			PlantName:      "Tulsi",
			Category:       "Medicinal, Religious / Ritual",
			Latitude:       &lat,
			Longitude:      &lon,
			ContactInfo:    "asha@example.com",
			Consent:        entity.ConsentGrant,
		},
		{ID: "ef56gh78", PlantName: "Neem", ContactInfo: "x@example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, subs, &owner))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	first := rows[1]
	assert.Equal(t, "2024-03-01 09:30:00", first[1])
	assert.Equal(t, "18.52", first[13])
	assert.Equal(t, "asha@example.com", first[18])
	assert.Equal(t, entity.LegacyConsentGrant, first[19])
	assert.Equal(t, "7", first[23])

	second := rows[2]
	assert.Empty(t, second[13])
	assert.Empty(t, second[18], "contact without an owner is never written")
	assert.Empty(t, second[19])
	assert.Empty(t, second[23])

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, subs, nil))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, rows[1][18])
}

func TestImport(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, 7, "asha")
	repo := repository.NewSubmissionRepository(db, 0)
	im := NewImporter(repo, owners{db}, nil)

	// Columns reordered and a BOM on the first header.
	data := "\ufeffPlant Name,ID,Consent,User ID,Latitude,Longitude,Time,Contact\n" +
		"Tulsi,ab12cd34," + entity.LegacyConsentGrant + ",7,18.5,73.8,2024-03-01 09:30:00,asha@example.com\n" +
		"Neem,ef56gh78," + entity.LegacyConsentDeny + ",99,0.0,0.0,,\n" +
		",zz000000,,,,,,\n" +
		"Tulsi again,ab12cd34,,,,,,\n" +
		"Moringa,,grant,,,,,\n"

	result, err := im.Import(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 2, result.Skipped)

	var tulsi entity.Submission
	require.NoError(t, db.First(&tulsi, "id = ?", "ab12cd34").Error)
	assert.Equal(t, "Tulsi", tulsi.PlantName)
	assert.Equal(t, entity.ConsentGrant, tulsi.Consent)
	require.NotNil(t, tulsi.UserID)
	assert.Equal(t, uint(7), *tulsi.UserID)
	require.NotNil(t, tulsi.Latitude)
	assert.InDelta(t, 18.5, *tulsi.Latitude, 1e-9)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), tulsi.SubmissionTime.UTC())

	var neem entity.Submission
	require.NoError(t, db.First(&neem, "id = ?", "ef56gh78").Error)
	assert.Equal(t, entity.ConsentDeny, neem.Consent)
	assert.Nil(t, neem.UserID, "unknown owners are dropped")
	assert.Nil(t, neem.Latitude, "legacy 0,0 means no coordinates")

	var count int64
	require.NoError(t, db.Model(&entity.Submission{}).Where("plant_name = ?", "Moringa").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, 7, "asha")
	repo := repository.NewSubmissionRepository(db, 0)

	owner := uint(7)
	require.NoError(t, repo.Create(context.Background(), &entity.Submission{
		ID: "ab12cd34", UserID: &owner, PlantName: "Tulsi", ContactInfo: "asha@example.com", Consent: entity.ConsentDeny,
	}))
	subs, err := repo.ListVisible(context.Background(), &owner)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, subs, &owner))

	target := testutil.NewDB(t)
	testutil.CreateUser(t, target, 7, "asha")
	result, err := NewImporter(repository.NewSubmissionRepository(target, 0), owners{target}, nil).Import(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 1}, result)

	var got entity.Submission
	require.NoError(t, target.First(&got, "id = ?", "ab12cd34").Error)
	assert.Equal(t, "asha@example.com", got.ContactInfo)
	assert.Equal(t, entity.ConsentDeny, got.Consent)
}

func TestImportRejectsMissingColumn(t *testing.T) {
	im := NewImporter(nil, nil, nil)
	_, err := im.Import(context.Background(), strings.NewReader("ID,Time\nab12cd34,\n"))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = im.Import(context.Background(), strings.NewReader(""))
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}
