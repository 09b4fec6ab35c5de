package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/database"
)

// EnrollmentRepository answers what each person can see through enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// SubjectsForStudent lists the student's enrolled subjects by name, flagging
// those already rated.
func (r *EnrollmentRepository) SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error) {
	const query = `SELECT s.subject_id, s.subject_name, COALESCE(u.user_name, '') AS teacher_name,
        (f.feedback_id IS NOT NULL) AS has_feedback
        FROM enrollments e
        INNER JOIN subjects s ON s.subject_id = e.subject_id
        LEFT JOIN users u ON u.user_id = s.teacher_id
        LEFT JOIN feedback f ON f.enrollment_id = e.enrollment_id
        WHERE e.user_id = $1
        ORDER BY s.subject_name, s.subject_id`
	subjects := []models.StudentSubject{}
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student subjects: %w", err)
	}
	return subjects, nil
}

// SubjectsForTeacher lists the teacher's subjects by name with feedback counts.
func (r *EnrollmentRepository) SubjectsForTeacher(ctx context.Context, teacherID string) ([]models.TeacherSubject, error) {
	const query = `SELECT s.subject_id, s.subject_name, COUNT(f.feedback_id) AS feedback_count
        FROM subjects s
        LEFT JOIN enrollments e ON e.subject_id = s.subject_id
        LEFT JOIN feedback f ON f.enrollment_id = e.enrollment_id
        WHERE s.teacher_id = $1
        GROUP BY s.subject_id, s.subject_name
        ORDER BY s.subject_name, s.subject_id`
	subjects := []models.TeacherSubject{}
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// Create persists a new enrollment, rejecting a repeated student/subject pair.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollments (enrollment_id, user_id, subject_id)
        VALUES (:enrollment_id, :user_id, :subject_id)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}
