package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/internal/models"
)

func TestEnrollmentRepositorySubjectsForStudent(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "subject_name", "teacher_name", "has_feedback"}).
		AddRow("sub-1", "Algebra", "Ms. Ray", true).
		AddRow("sub-2", "Biology", "", false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.user_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	subjects, err := repo.SubjectsForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Algebra", subjects[0].SubjectName)
	assert.True(t, subjects[0].HasFeedback)
	assert.Equal(t, "", subjects[1].TeacherName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySubjectsForStudentEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.user_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "subject_name", "teacher_name", "has_feedback"}))

	subjects, err := repo.SubjectsForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, subjects)
	assert.Empty(t, subjects)
}

func TestEnrollmentRepositorySubjectsForTeacher(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "subject_name", "feedback_count"}).
		AddRow("sub-1", "Algebra", 3).
		AddRow("sub-3", "Geometry", 0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.teacher_id = $1")).
		WithArgs("tea-1").
		WillReturnRows(rows)

	subjects, err := repo.SubjectsForTeacher(context.Background(), "tea-1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, 3, subjects[0].FeedbackCount)
	assert.Equal(t, 0, subjects[1].FeedbackCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments (enrollment_id, user_id, subject_id)")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "stu-1", SubjectID: "sub-1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "stu-1", SubjectID: "sub-1"})
	require.ErrorIs(t, err, ErrDuplicateEnrollment)
}
