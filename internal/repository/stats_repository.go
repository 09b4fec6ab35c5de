package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-feedback-api/internal/models"
)

// StatsRepository computes aggregates straight from the tables.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// SystemStats counts users per role, subjects and feedback in one statement.
func (r *StatsRepository) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM users WHERE user_type = 'STUDENT') AS student_count,
        (SELECT COUNT(*) FROM users WHERE user_type = 'TEACHER') AS teacher_count,
        (SELECT COUNT(*) FROM subjects) AS subject_count,
        (SELECT COUNT(*) FROM feedback) AS feedback_count`
	var stats models.SystemStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return &stats, nil
}

// SubjectAggregate averages a subject's feedback. Averages are NULL when the
// subject has no feedback; an unknown subject yields ErrSubjectNotFound.
func (r *StatsRepository) SubjectAggregate(ctx context.Context, subjectID string) (*models.SubjectRatingAggregate, error) {
	const query = `SELECT COUNT(f.feedback_id) AS feedback_count,
        AVG((f.q1 + f.q2 + f.q3 + f.q4 + f.q5) / 5.0)::float8 AS overall_avg,
        AVG(f.q1)::float8 AS q1_avg,
        AVG(f.q2)::float8 AS q2_avg,
        AVG(f.q3)::float8 AS q3_avg,
        AVG(f.q4)::float8 AS q4_avg,
        AVG(f.q5)::float8 AS q5_avg
        FROM subjects s
        LEFT JOIN enrollments e ON e.subject_id = s.subject_id
        LEFT JOIN feedback f ON f.enrollment_id = e.enrollment_id
        WHERE s.subject_id = $1
        GROUP BY s.subject_id`
	var agg models.SubjectRatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("subject aggregate: %w", err)
	}
	return &agg, nil
}
