package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/service"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type teacherService interface {
	SubjectsForTeacher(ctx context.Context, teacherID string) ([]models.TeacherSubject, error)
	FeedbackForSubject(ctx context.Context, teacherID, subjectName string) ([]models.FeedbackEntry, error)
}

type feedbackExporter interface {
	ExportFeedback(ctx context.Context, teacherID, subjectName, format string) (*service.ExportFile, error)
}

// TeacherHandler serves the teacher dashboard.
type TeacherHandler struct {
	service  teacherService
	exporter feedbackExporter
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(svc teacherService, exporter feedbackExporter) *TeacherHandler {
	return &TeacherHandler{service: svc, exporter: exporter}
}

// Subjects godoc
// @Summary List my subjects
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/subjects [get]
func (h *TeacherHandler) Subjects(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	subjects, err := h.service.SubjectsForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subjects)
}

// Feedback godoc
// @Summary Feedback for one of my subjects
// @Description Anonymous submissions, newest first
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param subject query string true "Subject name"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/feedback [get]
func (h *TeacherHandler) Feedback(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	entries, err := h.service.FeedbackForSubject(c.Request.Context(), claims.UserID, c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{
		"count":     len(entries),
		"questions": models.Questions,
	})
}

// Export godoc
// @Summary Download feedback
// @Tags Teacher
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param subject query string true "Subject name"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/feedback/export [get]
func (h *TeacherHandler) Export(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	file, err := h.exporter.ExportFeedback(c.Request.Context(), claims.UserID, c.Query("subject"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
