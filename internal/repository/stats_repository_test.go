package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositorySystemStats(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(SELECT COUNT(*) FROM users WHERE user_type = 'STUDENT') AS student_count")).
		WillReturnRows(sqlmock.NewRows([]string{"student_count", "teacher_count", "subject_count", "feedback_count"}).
			AddRow(120, 8, 14, 97))

	stats, err := repo.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.StudentCount)
	assert.Equal(t, 8, stats.TeacherCount)
	assert.Equal(t, 14, stats.SubjectCount)
	assert.Equal(t, 97, stats.FeedbackCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositorySubjectAggregate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStatsRepository(db)

	columns := []string{"feedback_count", "overall_avg", "q1_avg", "q2_avg", "q3_avg", "q4_avg", "q5_avg"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.subject_id = $1")).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(2, 4.2, 4.5, 4.0, 4.0, 4.0, 4.5))

	agg, err := repo.SubjectAggregate(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 2, agg.FeedbackCount)
	require.NotNil(t, agg.Overall)
	assert.InDelta(t, 4.2, *agg.Overall, 1e-9)
	require.NotNil(t, agg.Q5)
	assert.InDelta(t, 4.5, *agg.Q5, 1e-9)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.subject_id = $1")).
		WithArgs("sub-2").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(0, nil, nil, nil, nil, nil, nil))

	empty, err := repo.SubjectAggregate(context.Background(), "sub-2")
	require.NoError(t, err)
	assert.Zero(t, empty.FeedbackCount)
	assert.Nil(t, empty.Overall)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositorySubjectAggregateUnknownSubject(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.subject_id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SubjectAggregate(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSubjectNotFound)
}
