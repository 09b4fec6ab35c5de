package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type enroller interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (*models.Enrollment, error)
	ListUsers(ctx context.Context, role string) ([]models.User, error)
}

// EnrollmentHandler handles enrollment endpoints.
type EnrollmentHandler struct {
	service enroller
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enroller) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll a student in a subject
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if !bindJSON(c, &req, "invalid enrollment payload") {
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Users godoc
// @Summary List users of a role
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string true "STUDENT, TEACHER or ADMIN"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/users [get]
func (h *EnrollmentHandler) Users(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, map[string]interface{}{"count": len(users)})
}
