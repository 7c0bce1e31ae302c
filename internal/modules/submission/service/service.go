package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/modules/export"
	"anoa.com/plantspeak/internal/modules/media"
	searchService "anoa.com/plantspeak/internal/modules/search/service"
	"anoa.com/plantspeak/internal/modules/submission/dto"
	"anoa.com/plantspeak/internal/modules/submission/repository"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/apperror"
	common "anoa.com/plantspeak/pkg/dto"
	"anoa.com/plantspeak/pkg/ratelimiter"
	"anoa.com/plantspeak/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	actionSubmit   = "submission"
	idAttempts     = 3
	searchHitLimit = 200
)

// UserLookup resolves the submitting account for default display names.
type UserLookup interface {
	FindByID(ctx context.Context, userID uint) (*entity.User, error)
}

type SubmissionService interface {
	Create(ctx context.Context, sess *session.Context, input dto.CreateSubmissionInput, uploads []media.Upload) (*dto.SubmissionResponse, error)
	List(ctx context.Context, sess *session.Context, filter dto.ListFilter) (*dto.ListResponse, error)
	Get(ctx context.Context, sess *session.Context, id string) (*dto.SubmissionResponse, error)
	Search(ctx context.Context, sess *session.Context, query string, filter dto.ListFilter) (*dto.ListResponse, error)
	Export(ctx context.Context, sess *session.Context, filter dto.ListFilter, w io.Writer) error
	OpenAttachment(ctx context.Context, sess *session.Context, id string, kind media.Kind) (storage.Location, error)
	Vocabulary() dto.VocabularyResponse
}

type submissionService struct {
	repo     repository.SubmissionRepository
	sidecar  *media.Sidecar
	index    searchService.SubmissionIndex
	users    UserLookup
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSubmissionService(
	repo repository.SubmissionRepository,
	sidecar *media.Sidecar,
	index searchService.SubmissionIndex,
	users UserLookup,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	logger *zap.Logger,
) SubmissionService {
	if index == nil {
		index = searchService.NewDisabled()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &submissionService{
		repo:     repo,
		sidecar:  sidecar,
		index:    index,
		users:    users,
		limiter:  limiter,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates the entry, stores its attachments and saves the record.
// Attachments written before a failed save are removed again.
func (s *submissionService) Create(ctx context.Context, sess *session.Context, input dto.CreateSubmissionInput, uploads []media.Upload) (*dto.SubmissionResponse, error) {
	sub, err := s.buildSubmission(ctx, sess, input)
	if err != nil {
		return nil, err
	}

	subject := rateSubject(sess)
	allowed, wait, err := s.limiter.Allow(ctx, subject, actionSubmit, s.cooldown)
	if err != nil {
		s.logger.Warn("submission rate limit check failed", zap.Error(err))
	} else if !allowed {
		return nil, fmt.Errorf("%w: retry in %s", apperror.ErrRateLimitExceeded, wait.Round(time.Second))
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		s.clearLimit(ctx, subject)
		return nil, err
	}
	sub.ID = id

	paths, err := s.sidecar.Store(ctx, id, uploads)
	if err != nil {
		s.clearLimit(ctx, subject)
		if errors.Is(err, apperror.ErrAttachment) {
			return nil, i18n.Wrap(i18n.ErrAttachment, err)
		}
		return nil, err
	}
	sub.PhotoPath = paths.Photo
	sub.VoicePath = paths.Voice
	sub.NotesPath = paths.Notes

	if err := s.repo.Create(ctx, sub); err != nil {
		s.sidecar.Discard(ctx, paths)
		s.clearLimit(ctx, subject)
		return nil, err
	}

	if err := s.index.IndexSubmission(ctx, sub); err != nil {
		s.logger.Warn("failed to index submission", zap.String("id", sub.ID), zap.Error(err))
	}

	s.logger.Info("submission saved",
		zap.String("id", sub.ID),
		zap.Bool("public", sub.IsPublic()),
		zap.Int("attachments", len(paths.All())),
	)

	res := dto.NewSubmissionResponse(sub, sess.Viewer(), langOf(sess))
	return &res, nil
}

func (s *submissionService) buildSubmission(ctx context.Context, sess *session.Context, input dto.CreateSubmissionInput) (*entity.Submission, error) {
	plantName := strings.TrimSpace(input.PlantName)
	if plantName == "" {
		return nil, i18n.Wrap(i18n.ErrPlantNameRequired, fmt.Errorf("%w: plant name is required", apperror.ErrInvalidInput))
	}

	categories := make([]string, 0, len(input.Categories))
	for _, c := range input.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !entity.IsKnownCategory(c) {
			return nil, fmt.Errorf("%w: unknown category %q", apperror.ErrInvalidInput, c)
		}
		categories = append(categories, c)
	}

	ageGroup := strings.TrimSpace(input.AgeGroup)
	if ageGroup != "" && !entity.IsKnownAgeGroup(ageGroup) {
		return nil, fmt.Errorf("%w: unknown age group %q", apperror.ErrInvalidInput, ageGroup)
	}

	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be given together", apperror.ErrInvalidInput)
	}

	sub := &entity.Submission{
		UserID:         sess.Viewer(),
		SubmissionTime: s.now().UTC(),
		PlantName:      plantName,
		EntryTitle:     strings.TrimSpace(input.EntryTitle),
		LocalNames:     strings.TrimSpace(input.LocalNames),
		ScientificName: strings.TrimSpace(input.ScientificName),
		Category:       entity.JoinCategories(categories),
		UsageDesc:      strings.TrimSpace(input.UsageDesc),
		PrepMethod:     strings.TrimSpace(input.PrepMethod),
		Community:      strings.TrimSpace(input.Community),
		Tags:           strings.TrimSpace(input.Tags),
		Location:       strings.TrimSpace(input.Location),
		Language:       strings.TrimSpace(input.Language),
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		AgeGroup:       ageGroup,
		SubmitterRole:  strings.TrimSpace(input.SubmitterRole),
		SubmitterName:  strings.TrimSpace(input.SubmitterName),
		ContactInfo:    strings.TrimSpace(input.ContactInfo),
		Consent:        entity.NormalizeConsent(input.Consent),
	}

	if sess.IsAuthenticated() && s.users != nil {
		user, err := s.users.FindByID(ctx, *sess.UserID)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %d no longer exists", apperror.ErrUnauthorized, *sess.UserID)
		}
		if err != nil {
			return nil, err
		}
		sub.User = user
		if sub.SubmitterName == "" {
			sub.SubmitterName = user.DisplayName()
		}
	}
	return sub, nil
}

func (s *submissionService) allocateID(ctx context.Context) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id := entity.NewSubmissionID()
		exists, err := s.repo.ExistsByID(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a submission id", apperror.ErrConflict)
}

func (s *submissionService) clearLimit(ctx context.Context, subject string) {
	if err := s.limiter.Clear(ctx, subject, actionSubmit); err != nil {
		s.logger.Warn("failed to clear submission rate limit", zap.Error(err))
	}
}

func (s *submissionService) List(ctx context.Context, sess *session.Context, filter dto.ListFilter) (*dto.ListResponse, error) {
	all, subs, err := s.visible(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return s.page(sess, subs, all, filter), nil
}

func (s *submissionService) Get(ctx context.Context, sess *session.Context, id string) (*dto.SubmissionResponse, error) {
	sub, err := s.repo.FindVisibleByID(ctx, id, sess.Viewer())
	if err != nil {
		return nil, err
	}
	res := dto.NewSubmissionResponse(sub, sess.Viewer(), langOf(sess))
	return &res, nil
}

// Search ranks through the full-text index when one is configured. Index hits
// are re-resolved against the visible set, and the viewer's own records are
// merged in by substring match since private records are never indexed.
func (s *submissionService) Search(ctx context.Context, sess *session.Context, query string, filter dto.ListFilter) (*dto.ListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" || !s.index.Enabled() {
		filter.Search = query
		return s.List(ctx, sess, filter)
	}

	ids, err := s.index.Search(ctx, query, searchHitLimit)
	if err != nil {
		s.logger.Warn("search index unavailable, falling back to substring match", zap.Error(err))
		filter.Search = query
		return s.List(ctx, sess, filter)
	}

	filter.Search = ""
	all, subs, err := s.visible(ctx, sess, filter)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entity.Submission, len(subs))
	for _, sub := range subs {
		byID[sub.ID] = sub
	}

	results := make([]entity.Submission, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if sub, ok := byID[id]; ok && !seen[id] {
			results = append(results, sub)
			seen[id] = true
		}
	}
	viewer := sess.Viewer()
	for _, sub := range subs {
		if !seen[sub.ID] && sub.OwnedBy(viewer) && matchesText(&sub, query) {
			results = append(results, sub)
			seen[sub.ID] = true
		}
	}

	return s.page(sess, results, all, filter), nil
}

// Export writes every visible record matching filter, without pagination.
func (s *submissionService) Export(ctx context.Context, sess *session.Context, filter dto.ListFilter, w io.Writer) error {
	_, subs, err := s.visible(ctx, sess, filter)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, subs, sess.Viewer())
}

// OpenAttachment locates an attachment of a record the viewer may see.
func (s *submissionService) OpenAttachment(ctx context.Context, sess *session.Context, id string, kind media.Kind) (storage.Location, error) {
	sub, err := s.repo.FindVisibleByID(ctx, id, sess.Viewer())
	if err != nil {
		return storage.Location{}, err
	}
	paths := media.Paths{Photo: sub.PhotoPath, Voice: sub.VoicePath, Notes: sub.NotesPath}
	ref := paths.Get(kind)
	if ref == "" {
		return storage.Location{}, fmt.Errorf("%w: no %s attachment", apperror.ErrNotFound, kind)
	}
	return s.sidecar.Locate(ctx, ref)
}

func (s *submissionService) Vocabulary() dto.VocabularyResponse {
	return dto.VocabularyResponse{
		Categories: append([]string(nil), entity.Categories...),
		AgeGroups:  append([]string(nil), entity.AgeGroups...),
		Consent:    []string{entity.ConsentGrant, entity.ConsentDeny},
	}
}

// visible returns every record the viewer may see and the subset matching
// filter. An anonymous viewer asking for their own records gets none.
func (s *submissionService) visible(ctx context.Context, sess *session.Context, filter dto.ListFilter) ([]entity.Submission, []entity.Submission, error) {
	viewer := sess.Viewer()
	subs, err := s.repo.ListVisible(ctx, viewer)
	if err != nil {
		return nil, nil, err
	}
	if filter.Mine && viewer == nil {
		return subs, []entity.Submission{}, nil
	}

	category := strings.TrimSpace(filter.Category)
	search := strings.TrimSpace(filter.Search)

	out := make([]entity.Submission, 0, len(subs))
	for _, sub := range subs {
		if filter.Mine && !sub.OwnedBy(viewer) {
			continue
		}
		if category != "" && !hasCategory(sub.Category, category) {
			continue
		}
		if search != "" && !matchesText(&sub, search) {
			continue
		}
		out = append(out, sub)
	}
	return subs, out, nil
}

// page slices the matches and lists the categories present in the whole
// visible set.
func (s *submissionService) page(sess *session.Context, subs, visible []entity.Submission, filter dto.ListFilter) *dto.ListResponse {
	filter.Normalize()

	start := (filter.Page - 1) * filter.Limit
	if start > len(subs) {
		start = len(subs)
	}
	end := start + filter.Limit
	if end > len(subs) {
		end = len(subs)
	}

	viewer := sess.Viewer()
	lang := langOf(sess)
	items := make([]dto.SubmissionResponse, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, dto.NewSubmissionResponse(&subs[i], viewer, lang))
	}

	return &dto.ListResponse{
		Items:      items,
		Meta:       common.NewPaginationMeta(filter.Page, filter.Limit, int64(len(subs))),
		Categories: distinctCategories(visible),
	}
}

func hasCategory(stored, category string) bool {
	for _, c := range entity.SplitCategories(stored) {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func matchesText(sub *entity.Submission, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{sub.PlantName, sub.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func distinctCategories(subs []entity.Submission) []string {
	set := map[string]struct{}{}
	for _, sub := range subs {
		for _, c := range entity.SplitCategories(sub.Category) {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func rateSubject(sess *session.Context) string {
	if sess.IsAuthenticated() {
		return ratelimiter.UserSubject(*sess.UserID)
	}
	return ratelimiter.IPSubject(sess.ClientIP)
}

func langOf(sess *session.Context) language.Tag {
	if sess == nil {
		return i18n.Base
	}
	return sess.Language
}
