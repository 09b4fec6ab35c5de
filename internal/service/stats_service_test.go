package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type stubStatsRepo struct {
	stats *models.SystemStats
	aggs  map[string]*models.SubjectRatingAggregate
	err   error
}

func (s *stubStatsRepo) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	snapshot := *s.stats
	return &snapshot, nil
}

func (s *stubStatsRepo) SubjectAggregate(ctx context.Context, subjectID string) (*models.SubjectRatingAggregate, error) {
	if s.err != nil {
		return nil, s.err
	}
	agg, ok := s.aggs[subjectID]
	if !ok {
		return nil, repository.ErrSubjectNotFound
	}
	return agg, nil
}

func float(v float64) *float64 { return &v }

func TestStatsServiceSystemStats(t *testing.T) {
	repo := &stubStatsRepo{stats: &models.SystemStats{StudentCount: 3, TeacherCount: 1, SubjectCount: 2, FeedbackCount: 4}}
	svc := NewStatsService(repo, nil)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.StudentCount)
	assert.Equal(t, 4, stats.FeedbackCount)
	assert.Equal(t, fixed, stats.GeneratedAt)
}

func TestStatsServiceSubjectAverage(t *testing.T) {
	repo := &stubStatsRepo{aggs: map[string]*models.SubjectRatingAggregate{
		subject1:   {FeedbackCount: 2, Overall: float(4.3), Q1: float(4), Q2: float(5), Q3: float(4), Q4: float(4.5), Q5: float(4)},
		subjectArt: {FeedbackCount: 0},
	}}
	svc := NewStatsService(repo, nil)

	avg, err := svc.SubjectAverage(context.Background(), subject1)
	require.NoError(t, err)
	require.True(t, avg.HasData())
	assert.InDelta(t, 4.3, *avg.Average, 1e-9)
	require.NotNil(t, avg.QuestionAverages)
	assert.InDelta(t, 4.5, avg.QuestionAverages[3], 1e-9)

	empty, err := svc.SubjectAverage(context.Background(), subjectArt)
	require.NoError(t, err)
	assert.False(t, empty.HasData())
	assert.Nil(t, empty.Average)
	assert.Nil(t, empty.QuestionAverages)

	_, err = svc.SubjectAverage(context.Background(), "8a0e3f3c-5f43-4b7a-9c55-0c4f1c1f0cff")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStatsServiceSubjectAverageMalformedID(t *testing.T) {
	repo := &stubStatsRepo{err: &pq.Error{Code: "22P02"}}
	svc := NewStatsService(repo, nil)

	_, err := svc.SubjectAverage(context.Background(), "abc")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, appErrors.KindNotFound, appErrors.KindOf(err))
}
