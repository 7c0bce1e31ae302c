package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/plantspeak/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const submissionsIndex = "submissions"

// SubmissionIndex is a full-text index over the public set. It never holds
// contact details or owner ids.
type SubmissionIndex interface {
	Enabled() bool
	IndexSubmission(ctx context.Context, sub *entity.Submission) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, logger *zap.Logger) SubmissionIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	s.initIndex()
	return s
}

// NewMeiliClient normalizes the configured host the way deployments pass it.
func NewMeiliClient(host, masterKey string) meilisearch.ServiceManager {
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(masterKey))
}

func (s *meiliSearchService) initIndex() {
	filterable := []any{"category", "language"}
	if _, err := s.client.Index(submissionsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.logger.Warn("failed to update submissions filterable attributes", zap.Error(err))
	}

	sortable := []string{"submission_time"}
	if _, err := s.client.Index(submissionsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.logger.Warn("failed to update submissions sortable attributes", zap.Error(err))
	}
}

type meiliSubmissionDoc struct {
	ID             string `json:"id"`
	PlantName      string `json:"plant_name"`
	EntryTitle     string `json:"entry_title"`
	LocalNames     string `json:"local_names"`
	ScientificName string `json:"scientific_name"`
	Category       string `json:"category"`
	UsageDesc      string `json:"usage_desc"`
	PrepMethod     string `json:"prep_method"`
	Community      string `json:"community"`
	Tags           string `json:"tags"`
	Location       string `json:"location"`
	Language       string `json:"language"`
	SubmissionTime int64  `json:"submission_time"`
}

func (s *meiliSearchService) Enabled() bool { return true }

// IndexSubmission adds a public record. Private records are ignored.
func (s *meiliSearchService) IndexSubmission(_ context.Context, sub *entity.Submission) error {
	if !sub.IsPublic() {
		return nil
	}

	doc := meiliSubmissionDoc{
		ID:             sub.ID,
		PlantName:      s.cleanText(sub.PlantName),
		EntryTitle:     s.cleanText(sub.EntryTitle),
		LocalNames:     s.cleanText(sub.LocalNames),
		ScientificName: s.cleanText(sub.ScientificName),
		Category:       sub.Category,
		UsageDesc:      s.cleanText(sub.UsageDesc),
		PrepMethod:     s.cleanText(sub.PrepMethod),
		Community:      s.cleanText(sub.Community),
		Tags:           s.cleanText(sub.Tags),
		Location:       s.cleanText(sub.Location),
		Language:       sub.Language,
		SubmissionTime: sub.SubmissionTime.Unix(),
	}

	task, err := s.client.Index(submissionsIndex).AddDocuments([]meiliSubmissionDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index submission %s: %w", sub.ID, err)
	}
	s.logger.Debug("indexed submission", zap.String("id", sub.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Search returns matching submission ids in relevance order.
func (s *meiliSearchService) Search(_ context.Context, query string, limit int) ([]string, error) {
	resp, err := s.client.Index(submissionsIndex).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search submissions: %w", err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.ID != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}

// cleanText strips markup so indexed text matches what readers see.
func (s *meiliSearchService) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

type disabledIndex struct{}

// NewDisabled is used when no search host is configured.
func NewDisabled() SubmissionIndex { return disabledIndex{} }

func (disabledIndex) Enabled() bool { return false }

func (disabledIndex) IndexSubmission(context.Context, *entity.Submission) error { return nil }

func (disabledIndex) Search(context.Context, string, int) ([]string, error) { return nil, nil }

func strPtr(s string) *string {
	return &s
}
