package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type subjectAdmin interface {
	CreateSubject(ctx context.Context, req models.CreateSubjectRequest) (*models.Subject, error)
	ReassignSubject(ctx context.Context, subjectID string, req models.ReassignSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, subjectID string) error
}

// SubjectHandler handles subject administration.
type SubjectHandler struct {
	service subjectAdmin
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectAdmin) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// Create godoc
// @Summary Create subject
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req models.CreateSubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.CreateSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Reassign godoc
// @Summary Move a subject to another teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Param payload body models.ReassignSubjectRequest true "New teacher"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/subjects/{subjectId}/teacher [put]
func (h *SubjectHandler) Reassign(c *gin.Context) {
	var req models.ReassignSubjectRequest
	if !bindJSON(c, &req, "invalid subject payload") {
		return
	}
	subject, err := h.service.ReassignSubject(c.Request.Context(), c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subject)
}

// Delete godoc
// @Summary Delete subject
// @Description Refused once the subject has feedback
// @Tags Admin
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/subjects/{subjectId} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSubject(c.Request.Context(), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
