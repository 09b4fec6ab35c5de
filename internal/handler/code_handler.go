package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-feedback-api/internal/models"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
	"github.com/noah-isme/course-feedback-api/pkg/response"
)

type codeService interface {
	GenerateCode(ctx context.Context, role models.Role) (*models.LoginCode, error)
	ListCodes(ctx context.Context) ([]models.LoginCodeDetail, error)
	ProvisionUser(ctx context.Context, req models.ProvisionUserRequest) (*models.ProvisionedUser, error)
}

// CodeHandler manages login codes and user provisioning for admins.
type CodeHandler struct {
	service codeService
}

// NewCodeHandler constructs the handler.
func NewCodeHandler(svc codeService) *CodeHandler {
	return &CodeHandler{service: svc}
}

// Generate godoc
// @Summary Generate a login code
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.GenerateCodeRequest true "Role for the code"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/codes [post]
func (h *CodeHandler) Generate(c *gin.Context) {
	var req models.GenerateCodeRequest
	if !bindJSON(c, &req, "invalid code payload") {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		response.Error(c, appErrors.WithDetail(appErrors.Clone(appErrors.ErrValidation, "unknown role"), "role", req.Role))
		return
	}

	code, err := h.service.GenerateCode(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, code)
}

// List godoc
// @Summary List login codes
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/codes [get]
func (h *CodeHandler) List(c *gin.Context) {
	codes, err := h.service.ListCodes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes, map[string]interface{}{"count": len(codes)})
}

// ProvisionUser godoc
// @Summary Create a user with a fresh login code
// @Description The code is returned once and is the user's only credential
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ProvisionUserRequest true "User details"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/users [post]
func (h *CodeHandler) ProvisionUser(c *gin.Context) {
	var req models.ProvisionUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	user, err := h.service.ProvisionUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}
