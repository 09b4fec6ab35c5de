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

// SubjectRepository handles persistence of subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject or ErrSubjectNotFound.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT subject_id, subject_name, teacher_id, created_at FROM subjects WHERE subject_id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// FindByName returns every subject carrying name; names are not unique.
func (r *SubjectRepository) FindByName(ctx context.Context, name string) ([]models.Subject, error) {
	const query = `SELECT subject_id, subject_name, teacher_id, created_at FROM subjects WHERE subject_name = $1 ORDER BY created_at, subject_id`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, name); err != nil {
		return nil, fmt.Errorf("find subjects by name: %w", err)
	}
	return subjects, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subjects (subject_id, subject_name, teacher_id, created_at)
VALUES (:subject_id, :subject_name, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// UpdateTeacher reassigns the owning teacher.
func (r *SubjectRepository) UpdateTeacher(ctx context.Context, id, teacherID string) error {
	const query = `UPDATE subjects SET teacher_id = $2 WHERE subject_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, teacherID)
	if err != nil {
		return fmt.Errorf("reassign subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign subject rows: %w", err)
	}
	if affected == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// Delete removes a subject and its enrollments, refusing while any feedback
// references it. The subject row is locked for the duration of the check.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		const lockQuery = `SELECT subject_id FROM subjects WHERE subject_id = $1 FOR UPDATE`
		var locked string
		if err := tx.GetContext(ctx, &locked, lockQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSubjectNotFound
			}
			return fmt.Errorf("lock subject: %w", err)
		}

		const countQuery = `SELECT COUNT(*) FROM feedback f
INNER JOIN enrollments e ON e.enrollment_id = f.enrollment_id
WHERE e.subject_id = $1`
		var feedbackCount int
		if err := tx.GetContext(ctx, &feedbackCount, countQuery, id); err != nil {
			return fmt.Errorf("count subject feedback: %w", err)
		}
		if feedbackCount > 0 {
			return ErrSubjectHasFeedback
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE subject_id = $1`, id); err != nil {
			return fmt.Errorf("delete subject enrollments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE subject_id = $1`, id); err != nil {
			return fmt.Errorf("delete subject: %w", err)
		}
		return nil
	})
}
