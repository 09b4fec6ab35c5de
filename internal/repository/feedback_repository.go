package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/database"
)

// FeedbackRepository writes feedback rows.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Submit resolves the enrollment for (studentID, subjectID) and inserts fb for
// it, all inside one transaction. The enrollment row is locked so concurrent
// submissions for the same enrollment queue behind each other, and the unique
// constraint on feedback.enrollment_id rejects anything that slips through.
func (r *FeedbackRepository) Submit(ctx context.Context, studentID, subjectID string, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.SubmittedOn.IsZero() {
		fb.SubmittedOn = time.Now().UTC()
	}

	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		const enrollmentQuery = `SELECT enrollment_id FROM enrollments WHERE user_id = $1 AND subject_id = $2 FOR UPDATE`
		if err := tx.GetContext(ctx, &fb.EnrollmentID, enrollmentQuery, studentID, subjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("lock enrollment: %w", err)
		}

		const existsQuery = `SELECT EXISTS (SELECT 1 FROM feedback WHERE enrollment_id = $1)`
		var exists bool
		if err := tx.GetContext(ctx, &exists, existsQuery, fb.EnrollmentID); err != nil {
			return fmt.Errorf("check existing feedback: %w", err)
		}
		if exists {
			return ErrFeedbackExists
		}

		const insertQuery = `INSERT INTO feedback (feedback_id, enrollment_id, q1, q2, q3, q4, q5, comments, submitted_on)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (enrollment_id) DO NOTHING`
		res, err := tx.ExecContext(ctx, insertQuery,
			fb.ID, fb.EnrollmentID, fb.Q1, fb.Q2, fb.Q3, fb.Q4, fb.Q5, fb.Comments, fb.SubmittedOn)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrFeedbackExists
			}
			return fmt.Errorf("insert feedback: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert feedback rows: %w", err)
		}
		if affected == 0 {
			return ErrFeedbackExists
		}
		return nil
	})
}

// ListBySubject returns feedback for a subject, newest first.
func (r *FeedbackRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Feedback, error) {
	const query = `SELECT f.feedback_id, f.enrollment_id, f.q1, f.q2, f.q3, f.q4, f.q5, f.comments, f.submitted_on
FROM feedback f
INNER JOIN enrollments e ON e.enrollment_id = f.enrollment_id
WHERE e.subject_id = $1
ORDER BY f.submitted_on DESC, f.feedback_id DESC`
	var rows []models.Feedback
	if err := r.db.SelectContext(ctx, &rows, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject feedback: %w", err)
	}
	return rows, nil
}
