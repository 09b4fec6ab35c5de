package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	"github.com/noah-isme/course-feedback-api/pkg/config"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type feedbackWriter interface {
	Submit(ctx context.Context, studentID, subjectID string, fb *models.Feedback) error
}

// FeedbackService records write-once student feedback.
type FeedbackService struct {
	repo      feedbackWriter
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    config.FeedbackConfig
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(repo feedbackWriter, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg config.FeedbackConfig) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxCommentLength <= 0 {
		cfg.MaxCommentLength = 2000
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger, metrics: metrics, config: cfg}
}

// Submit stores the student's only feedback for subjectID. Ratings, comments
// and the subject ID are checked before any store access; the enrollment
// lookup, duplicate check and insert then run as one transaction.
func (s *FeedbackService) Submit(ctx context.Context, studentID, subjectID string, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	scores, ok := req.Scores()
	if !ok {
		s.metrics.RecordFeedback(appErrors.ErrValidation.Code)
		return nil, appErrors.WithDetail(
			appErrors.Clone(appErrors.ErrValidation, "one rating per question is required"),
			"expected_ratings", models.QuestionCount,
		)
	}
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordFeedback(appErrors.ErrInvalidRating.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidRating, "")
	}
	comments := strings.TrimSpace(req.Comments)
	if utf8.RuneCountInString(comments) > s.config.MaxCommentLength {
		s.metrics.RecordFeedback(appErrors.ErrValidation.Code)
		return nil, appErrors.WithDetail(
			appErrors.Clone(appErrors.ErrValidation, "comments are too long"),
			"max_length", s.config.MaxCommentLength,
		)
	}

	if !validID(subjectID) {
		s.metrics.RecordFeedback(appErrors.ErrEnrollmentGone.Code)
		return nil, appErrors.Clone(appErrors.ErrEnrollmentGone, "student is not enrolled in this subject")
	}

	fb := &models.Feedback{Comments: comments}
	fb.SetRatings(scores)

	if err := s.repo.Submit(ctx, studentID, subjectID, fb); err != nil {
		var appErr *appErrors.Error
		switch {
		case errors.Is(err, repository.ErrEnrollmentNotFound):
			appErr = appErrors.Clone(appErrors.ErrEnrollmentGone, "student is not enrolled in this subject")
		case errors.Is(err, repository.ErrFeedbackExists):
			appErr = appErrors.Clone(appErrors.ErrAlreadyRated, "")
		default:
			appErr = storeFault(err, "failed to submit feedback")
			s.logger.Error("feedback submission failed",
				zap.String("student_id", studentID),
				zap.String("subject_id", subjectID),
				zap.Error(err),
			)
		}
		s.metrics.RecordFeedback(appErr.Code)
		return nil, appErr
	}

	s.metrics.RecordFeedback("ok")
	s.logger.Info("feedback submitted", zap.String("enrollment_id", fb.EnrollmentID))
	return fb, nil
}
