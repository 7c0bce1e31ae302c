package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/testutil"
	"anoa.com/plantspeak/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func ids(subs []entity.Submission) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

func newRepo(t *testing.T) (SubmissionRepository, *gorm.DB) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, 7, "asha")
	testutil.CreateUser(t, db, 8, "ravi")
	return NewSubmissionRepository(db, time.Second), db
}

func seed(t *testing.T, repo SubmissionRepository, subs ...entity.Submission) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := range subs {
		if subs[i].SubmissionTime.IsZero() {
			subs[i].SubmissionTime = base.Add(time.Duration(i) * time.Minute)
		}
		require.NoError(t, repo.Create(context.Background(), &subs[i]))
	}
}

func TestListVisible(t *testing.T) {
	repo, _ := newRepo(t)
	seed(t, repo,
		entity.Submission{ID: "neem0001", PlantName: "Neem", Consent: entity.ConsentGrant},
		entity.Submission{ID: "tulsi001", PlantName: "Tulsi", UserID: uintPtr(7), Consent: entity.ConsentDeny},
		entity.Submission{ID: "amla0001", PlantName: "Amla", UserID: uintPtr(8), Consent: ""},
		entity.Submission{ID: "giloy001", PlantName: "Giloy", UserID: uintPtr(8), Consent: entity.ConsentGrant},
	)
	ctx := context.Background()

	t.Run("anonymous sees the public set newest first", func(t *testing.T) {
		subs, err := repo.ListVisible(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"giloy001", "neem0001"}, ids(subs))
	})

	t.Run("owner also sees own private records", func(t *testing.T) {
		subs, err := repo.ListVisible(ctx, uintPtr(7))
		require.NoError(t, err)
		assert.Equal(t, []string{"giloy001", "tulsi001", "neem0001"}, ids(subs))
	})

	t.Run("empty consent is private", func(t *testing.T) {
		subs, err := repo.ListVisible(ctx, uintPtr(8))
		require.NoError(t, err)
		assert.Equal(t, []string{"giloy001", "amla0001", "neem0001"}, ids(subs))
	})

	t.Run("owners are loaded", func(t *testing.T) {
		subs, err := repo.ListVisible(ctx, uintPtr(7))
		require.NoError(t, err)
		for _, s := range subs {
			if s.UserID != nil {
				require.NotNil(t, s.User, s.ID)
				assert.Equal(t, *s.UserID, s.User.ID)
			}
		}
	})
}

func TestFindVisibleByID(t *testing.T) {
	repo, _ := newRepo(t)
	seed(t, repo, entity.Submission{ID: "tulsi001", PlantName: "Tulsi", UserID: uintPtr(7), Consent: entity.ConsentDeny, ContactInfo: "98100"})
	ctx := context.Background()

	sub, err := repo.FindVisibleByID(ctx, "tulsi001", uintPtr(7))
	require.NoError(t, err)
	assert.Equal(t, "98100", sub.ContactInfo)

	_, err = repo.FindVisibleByID(ctx, "tulsi001", uintPtr(8))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = repo.FindVisibleByID(ctx, "tulsi001", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateRoundTrip(t *testing.T) {
	repo, _ := newRepo(t)
	lat, lon := 18.5204, 73.8567
	in := entity.Submission{
		ID:             "ab12cd34",
		UserID:         uintPtr(7),
		SubmissionTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		PlantName:      "Tulsi",
		EntryTitle:     "Holy basil for colds",
		LocalNames:     "Tulasi, Surasa",
		ScientificName: "Ocimum tenuiflorum",
		Category:       "Medicinal, Religious / Ritual",
		UsageDesc:      "Leaves chewed for sore throat",
		PrepMethod:     "Boil five leaves",
		Community:      "Marathi",
		Tags:           "cold, throat",
		Location:       "Pune",
		Language:       "Marathi",
		Latitude:       &lat,
		Longitude:      &lon,
		PhotoPath:      "photos/ab12cd34.jpg",
		AgeGroup:       "51–70",
		SubmitterRole:  "Healer",
		SubmitterName:  "Asha",
		ContactInfo:    "asha@example.org",
		Consent:        entity.ConsentGrant,
	}
	seed(t, repo, in)

	got, err := repo.FindVisibleByID(context.Background(), "ab12cd34", nil)
	require.NoError(t, err)

	got.User = nil
	assert.True(t, in.SubmissionTime.Equal(got.SubmissionTime))
	got.SubmissionTime = in.SubmissionTime
	assert.Equal(t, in, *got)
}

func TestCreateRejects(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	seed(t, repo, entity.Submission{ID: "ab12cd34", PlantName: "Neem", Consent: entity.ConsentGrant})

	err := repo.Create(ctx, &entity.Submission{ID: "ab12cd34", PlantName: "Neem again"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	err = repo.Create(ctx, &entity.Submission{ID: "ef56ab78", PlantName: "  "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	exists, err := repo.ExistsByID(ctx, "ef56ab78")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCountByOwner(t *testing.T) {
	repo, _ := newRepo(t)
	seed(t, repo,
		entity.Submission{ID: "a0000001", PlantName: "Neem", UserID: uintPtr(7), Consent: entity.ConsentGrant},
		entity.Submission{ID: "a0000002", PlantName: "Tulsi", UserID: uintPtr(7), Consent: entity.ConsentDeny},
		entity.Submission{ID: "a0000003", PlantName: "Amla", UserID: uintPtr(8)},
	)

	count, err := repo.CountByOwner(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestOwnerDeletionOrphansRecords(t *testing.T) {
	repo, db := newRepo(t)
	seed(t, repo, entity.Submission{ID: "a0000001", PlantName: "Neem", UserID: uintPtr(7), Consent: entity.ConsentGrant, ContactInfo: "98100"})

	require.NoError(t, db.Exec("DELETE FROM users WHERE id = ?", 7).Error)

	sub, err := repo.FindVisibleByID(context.Background(), "a0000001", uintPtr(7))
	require.NoError(t, err)
	assert.Nil(t, sub.UserID)
	assert.Empty(t, sub.VisibleContact(uintPtr(7)))
}
