package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type enrollmentStore interface {
	SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error)
	SubjectsForTeacher(ctx context.Context, teacherID string) ([]models.TeacherSubject, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
}

type subjectStore interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindByName(ctx context.Context, name string) ([]models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	UpdateTeacher(ctx context.Context, id, teacherID string) error
	Delete(ctx context.Context, id string) error
}

type feedbackLister interface {
	ListBySubject(ctx context.Context, subjectID string) ([]models.Feedback, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// EnrollmentService answers who can see which subjects and feedback, and
// manages the subject/enrollment records behind those answers.
type EnrollmentService struct {
	enrollments enrollmentStore
	subjects    subjectStore
	feedback    feedbackLister
	users       userFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(enrollments enrollmentStore, subjects subjectStore, feedback feedbackLister, users userFinder, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		subjects:    subjects,
		feedback:    feedback,
		users:       users,
		validator:   validate,
		logger:      logger,
	}
}

// SubjectsForStudent lists the student's subjects ordered by name.
func (s *EnrollmentService) SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error) {
	subjects, err := s.enrollments.SubjectsForStudent(ctx, studentID)
	if err != nil {
		return nil, storeFault(err, "failed to list student subjects")
	}
	return subjects, nil
}

// SubjectsForTeacher lists the teacher's subjects with feedback counts.
func (s *EnrollmentService) SubjectsForTeacher(ctx context.Context, teacherID string) ([]models.TeacherSubject, error) {
	subjects, err := s.enrollments.SubjectsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeFault(err, "failed to list teacher subjects")
	}
	return subjects, nil
}

// FeedbackForSubject returns the anonymous feedback of every subject named
// subjectName that teacherID owns, newest first. An unknown name is
// NOT_FOUND; a name owned only by other teachers is FORBIDDEN.
func (s *EnrollmentService) FeedbackForSubject(ctx context.Context, teacherID, subjectName string) ([]models.FeedbackEntry, error) {
	name := strings.TrimSpace(subjectName)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject name is required")
	}

	candidates, err := s.subjects.FindByName(ctx, name)
	if err != nil {
		return nil, storeFault(err, "failed to look up subject")
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	entries := []models.FeedbackEntry{}
	owned := 0
	for _, subject := range candidates {
		if subject.TeacherID != teacherID {
			continue
		}
		owned++
		rows, err := s.feedback.ListBySubject(ctx, subject.ID)
		if err != nil {
			return nil, storeFault(err, "failed to list subject feedback")
		}
		for _, row := range rows {
			entries = append(entries, row.Entry())
		}
	}
	if owned == 0 {
		s.logger.Warn("feedback access denied", zap.String("teacher_id", teacherID), zap.String("subject", name))
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher")
	}

	if owned > 1 {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].SubmittedOn.After(entries[j].SubmittedOn)
		})
	}
	return entries, nil
}

// AuthorizeSubject allows admins any subject and teachers only their own.
func (s *EnrollmentService) AuthorizeSubject(ctx context.Context, userID string, role models.Role, subjectID string) error {
	if !validID(subjectID) {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return storeFault(err, "failed to load subject")
	}
	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if subject.TeacherID == userID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this user")
}

// Enroll links a student to a subject once.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid enrollment payload")
	}
	if _, err := s.requireUser(ctx, req.StudentID, models.RoleStudent); err != nil {
		return nil, err
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, storeFault(err, "failed to load subject")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, SubjectID: req.SubjectID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this subject")
		}
		return nil, storeFault(err, "failed to create enrollment")
	}
	s.logger.Info("student enrolled", zap.String("student_id", req.StudentID), zap.String("subject_id", req.SubjectID))
	return enrollment, nil
}

// CreateSubject adds a subject owned by a teacher.
func (s *EnrollmentService) CreateSubject(ctx context.Context, req models.CreateSubjectRequest) (*models.Subject, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid subject payload")
	}
	if _, err := s.requireUser(ctx, req.TeacherID, models.RoleTeacher); err != nil {
		return nil, err
	}

	subject := &models.Subject{Name: req.Name, TeacherID: req.TeacherID}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, storeFault(err, "failed to create subject")
	}
	return subject, nil
}

// ReassignSubject moves a subject to another teacher.
func (s *EnrollmentService) ReassignSubject(ctx context.Context, subjectID string, req models.ReassignSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid reassignment payload")
	}
	if !validID(subjectID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if _, err := s.requireUser(ctx, req.TeacherID, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.subjects.UpdateTeacher(ctx, subjectID, req.TeacherID); err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, storeFault(err, "failed to reassign subject")
	}
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, storeFault(err, "failed to reload subject")
	}
	return subject, nil
}

// DeleteSubject removes a subject that has never received feedback.
func (s *EnrollmentService) DeleteSubject(ctx context.Context, subjectID string) error {
	if !validID(subjectID) {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if err := s.subjects.Delete(ctx, subjectID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSubjectNotFound):
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		case errors.Is(err, repository.ErrSubjectHasFeedback):
			return appErrors.Clone(appErrors.ErrHasFeedback, "")
		default:
			return storeFault(err, "failed to delete subject")
		}
	}
	s.logger.Info("subject deleted", zap.String("subject_id", subjectID))
	return nil
}

// ListUsers returns the directory of one role for admin pickers.
func (s *EnrollmentService) ListUsers(ctx context.Context, rawRole string) ([]models.User, error) {
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, appErrors.WithDetail(appErrors.Clone(appErrors.ErrValidation, "unknown role"), "role", rawRole)
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, storeFault(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *EnrollmentService) requireUser(ctx context.Context, id string, role models.Role) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, storeFault(err, "failed to load user")
	}
	if user.Role != role {
		return nil, appErrors.WithDetail(
			appErrors.Clone(appErrors.ErrValidation, "user has the wrong role"),
			"expected_role", string(role),
		)
	}
	return user, nil
}
