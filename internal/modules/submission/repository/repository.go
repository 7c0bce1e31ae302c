package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/database"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *entity.Submission) error
	ListVisible(ctx context.Context, viewer *uint) ([]entity.Submission, error)
	FindVisibleByID(ctx context.Context, id string, viewer *uint) (*entity.Submission, error)
	CountByOwner(ctx context.Context, userID uint) (int64, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type submissionRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewSubmissionRepository(db *gorm.DB, lockTimeout time.Duration) SubmissionRepository {
	return &submissionRepository{db: db, lockTimeout: lockTimeout}
}

// Create inserts the record in one transaction. A taken id is ErrConflict and
// a missing id or plant name is ErrInvalidInput; nothing is stored on error.
func (r *submissionRepository) Create(ctx context.Context, sub *entity.Submission) error {
	if sub.ID == "" {
		return fmt.Errorf("%w: submission id is required", apperror.ErrInvalidInput)
	}
	if strings.TrimSpace(sub.PlantName) == "" {
		return fmt.Errorf("%w: plant name is required", apperror.ErrInvalidInput)
	}
	if sub.SubmissionTime.IsZero() {
		sub.SubmissionTime = time.Now().UTC()
	}

	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		return tx.Omit("User").Create(sub).Error
	})
}

// visibleTo restricts a query to the records viewer may see: the public set,
// plus the viewer's own records when a viewer is given.
func visibleTo(db *gorm.DB, viewer *uint) *gorm.DB {
	if viewer == nil {
		return db.Where("consent = ?", entity.ConsentGrant)
	}
	return db.Where("(user_id = ? OR consent = ?)", *viewer, entity.ConsentGrant)
}

// ListVisible returns the visible records newest first, with owners loaded.
func (r *submissionRepository) ListVisible(ctx context.Context, viewer *uint) ([]entity.Submission, error) {
	var subs []entity.Submission
	err := visibleTo(r.db.WithContext(ctx), viewer).
		Preload("User").
		Order("submission_time DESC").
		Order("id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return subs, nil
}

// FindVisibleByID reports records the viewer may not see as not found.
func (r *submissionRepository) FindVisibleByID(ctx context.Context, id string, viewer *uint) (*entity.Submission, error) {
	var sub entity.Submission
	err := visibleTo(r.db.WithContext(ctx), viewer).
		Preload("User").
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return &sub, nil
}

func (r *submissionRepository) CountByOwner(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, database.Classify(err)
	}
	return count, nil
}

func (r *submissionRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, database.Classify(err)
	}
	return count > 0, nil
}
