package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type statsRepository interface {
	SystemStats(ctx context.Context) (*models.SystemStats, error)
	SubjectAggregate(ctx context.Context, subjectID string) (*models.SubjectRatingAggregate, error)
}

// StatsService computes system-wide counts and per-subject averages. Nothing
// is cached; every call reads the store.
type StatsService struct {
	repo   statsRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo statsRepository, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, logger: logger, now: time.Now}
}

// SystemStats returns the current user, subject and feedback counts.
func (s *StatsService) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	stats, err := s.repo.SystemStats(ctx)
	if err != nil {
		return nil, storeFault(err, "failed to compute system stats")
	}
	stats.GeneratedAt = s.now().UTC()
	return stats, nil
}

// SubjectAverage returns the mean rating for a subject. With no feedback the
// Average is nil rather than zero.
func (s *StatsService) SubjectAverage(ctx context.Context, subjectID string) (*models.SubjectAverage, error) {
	if !validID(subjectID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	agg, err := s.repo.SubjectAggregate(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, storeFault(err, "failed to compute subject average")
	}

	result := &models.SubjectAverage{SubjectID: subjectID, FeedbackCount: agg.FeedbackCount}
	if agg.FeedbackCount == 0 || agg.Overall == nil {
		return result, nil
	}
	overall := *agg.Overall
	result.Average = &overall

	perQuestion := [models.QuestionCount]float64{}
	for i, v := range []*float64{agg.Q1, agg.Q2, agg.Q3, agg.Q4, agg.Q5} {
		if v != nil {
			perQuestion[i] = *v
		}
	}
	result.QuestionAverages = &perQuestion
	return result, nil
}
