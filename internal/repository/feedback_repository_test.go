package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/internal/models"
)

func sampleFeedback() *models.Feedback {
	fb := &models.Feedback{Comments: "clear lectures"}
	fb.SetRatings(models.Ratings{5, 4, 4, 3, 5})
	return fb
}

func TestFeedbackRepositorySubmit(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT enrollment_id FROM enrollments WHERE user_id = $1 AND subject_id = $2 FOR UPDATE")).
		WithArgs("stu-1", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"enrollment_id"}).AddRow("enr-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM feedback WHERE enrollment_id = $1)")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback (feedback_id, enrollment_id, q1, q2, q3, q4, q5, comments, submitted_on)")).
		WithArgs(sqlmock.AnyArg(), "enr-1", 5, 4, 4, 3, 5, "clear lectures", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	fb := sampleFeedback()
	require.NoError(t, repo.Submit(context.Background(), "stu-1", "sub-1", fb))
	assert.Equal(t, "enr-1", fb.EnrollmentID)
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.SubmittedOn.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitNotEnrolled(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE user_id = $1")).
		WithArgs("stu-1", "sub-9").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), "stu-1", "sub-9", sampleFeedback())
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitAlreadyExists(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE user_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"enrollment_id"}).AddRow("enr-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), "stu-1", "sub-1", sampleFeedback())
	require.ErrorIs(t, err, ErrFeedbackExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitLosesInsertRace(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE user_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"enrollment_id"}).AddRow("enr-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), "stu-1", "sub-1", sampleFeedback())
	require.ErrorIs(t, err, ErrFeedbackExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositorySubmitUniqueViolation(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE user_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"enrollment_id"}).AddRow("enr-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Submit(context.Background(), "stu-1", "sub-1", sampleFeedback())
	require.ErrorIs(t, err, ErrFeedbackExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListBySubject(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"feedback_id", "enrollment_id", "q1", "q2", "q3", "q4", "q5", "comments", "submitted_on"}).
		AddRow("fb-2", "enr-2", 5, 5, 5, 5, 5, "", now).
		AddRow("fb-1", "enr-1", 1, 2, 3, 4, 5, "needs slides", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.subject_id = $1")).
		WithArgs("sub-1").
		WillReturnRows(rows)

	list, err := repo.ListBySubject(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.Ratings{1, 2, 3, 4, 5}, list[1].Ratings())
	assert.Equal(t, "needs slides", list[1].Comments)
	require.NoError(t, mock.ExpectationsWereMet())
}
