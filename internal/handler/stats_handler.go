package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type statsReader interface {
	SystemStats(ctx context.Context) (*models.SystemStats, error)
	SubjectAverage(ctx context.Context, subjectID string) (*models.SubjectAverage, error)
}

type subjectAuthorizer interface {
	AuthorizeSubject(ctx context.Context, userID string, role models.Role, subjectID string) error
}

// StatsHandler exposes aggregate figures to admins and subject owners.
type StatsHandler struct {
	stats      statsReader
	authorizer subjectAuthorizer
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats statsReader, authorizer subjectAuthorizer) *StatsHandler {
	return &StatsHandler{stats: stats, authorizer: authorizer}
}

// System godoc
// @Summary System statistics
// @Description Student, teacher, subject and feedback counts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *StatsHandler) System(c *gin.Context) {
	stats, err := h.stats.SystemStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// SubjectAverage godoc
// @Summary Average rating of a subject
// @Description Returns average null with meta.no_data when nothing has been submitted
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{subjectId}/average [get]
func (h *StatsHandler) SubjectAverage(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	subjectID := c.Param("subjectId")
	if err := h.authorizer.AuthorizeSubject(c.Request.Context(), claims.UserID, claims.Role, subjectID); err != nil {
		response.Error(c, err)
		return
	}

	avg, err := h.stats.SubjectAverage(c.Request.Context(), subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, avg, map[string]interface{}{"no_data": !avg.HasData()})
}
