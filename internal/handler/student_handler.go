package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type studentSubjectLister interface {
	SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error)
}

type feedbackSubmitter interface {
	Submit(ctx context.Context, studentID, subjectID string, req models.SubmitFeedbackRequest) (*models.Feedback, error)
}

// StudentHandler serves the student dashboard.
type StudentHandler struct {
	subjects studentSubjectLister
	feedback feedbackSubmitter
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(subjects studentSubjectLister, feedback feedbackSubmitter) *StudentHandler {
	return &StudentHandler{subjects: subjects, feedback: feedback}
}

// Subjects godoc
// @Summary List my subjects
// @Description Enrolled subjects ordered by name, flagging those already rated
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/subjects [get]
func (h *StudentHandler) Subjects(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	subjects, err := h.subjects.SubjectsForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subjects)
}

// SubmitFeedback godoc
// @Summary Rate a subject
// @Description Submit the single feedback allowed for an enrollment
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param payload body models.SubmitFeedbackRequest true "Ratings and comments"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/subjects/{subjectId}/feedback [post]
func (h *StudentHandler) SubmitFeedback(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.SubmitFeedbackRequest
	if !bindJSON(c, &req, "invalid feedback payload") {
		return
	}

	fb, err := h.feedback.Submit(c.Request.Context(), claims.UserID, c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"subject_id":   c.Param("subjectId"),
		"submitted_on": fb.SubmittedOn,
		"ratings":      fb.Ratings(),
		"comments":     fb.Comments,
	})
}
