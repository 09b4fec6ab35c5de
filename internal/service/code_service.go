package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	"github.com/noah-isme/course-feedback-api/pkg/config"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

// codeAlphabet is the symbol set for login codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Largest multiple of len(codeAlphabet) that fits in a byte; bytes at or above
// it are redrawn so every symbol is equally likely.
const codeRejectAbove = 256 - 256%len(codeAlphabet)

type loginCodeRepository interface {
	Insert(ctx context.Context, code *models.LoginCode) (bool, error)
	List(ctx context.Context) ([]models.LoginCodeDetail, error)
	Authenticate(ctx context.Context, code string, role models.Role, consume bool) (*models.Identity, error)
	ProvisionUser(ctx context.Context, user *models.User, code *models.LoginCode) (bool, error)
}

// CodeService issues login codes and resolves them to identities.
type CodeService struct {
	repo      loginCodeRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    config.LoginCodeConfig
	random    io.Reader
}

// NewCodeService constructs a CodeService instance.
func NewCodeService(repo loginCodeRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg config.LoginCodeConfig) *CodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Length < 8 {
		cfg.Length = 8
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &CodeService{repo: repo, validator: validate, logger: logger, metrics: metrics, config: cfg, random: rand.Reader}
}

// GenerateCode stores a fresh unused code bound to role. A draw that collides
// with an existing code is retried; exhausting the attempts is a conflict.
func (s *CodeService) GenerateCode(ctx context.Context, role models.Role) (*models.LoginCode, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		value, err := s.draw()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal, "failed to draw login code")
		}
		code := &models.LoginCode{Code: value, Role: role}
		inserted, err := s.repo.Insert(ctx, code)
		if err != nil {
			return nil, storeFault(err, "failed to store login code")
		}
		if inserted {
			s.metrics.RecordCodeIssued(string(role))
			s.logger.Info("login code generated", zap.String("role", string(role)), zap.Int("attempt", attempt))
			return code, nil
		}
		s.logger.Warn("login code collision", zap.Int("attempt", attempt))
	}
	return nil, appErrors.Clone(appErrors.ErrCodeCollision, "")
}

// ValidateLogin resolves a code presented under a claimed role. Under the
// single-use policy a successful login consumes the code.
func (s *CodeService) ValidateLogin(ctx context.Context, rawCode, rawRole string) (*models.Identity, error) {
	code := normalizeCode(rawCode)
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "login code is required")
	}
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "unknown role")
	}

	identity, err := s.repo.Authenticate(ctx, code, role, s.config.SingleUse())
	if err != nil {
		var wrongRole *repository.WrongRoleError
		switch {
		case errors.As(err, &wrongRole):
			return nil, appErrors.WithDetail(appErrors.ErrWrongRole, "actual_role", string(wrongRole.Actual))
		case errors.Is(err, repository.ErrCodeNotFound):
			return nil, appErrors.Clone(appErrors.ErrCodeNotFound, "")
		case errors.Is(err, repository.ErrNoMatchingUser):
			return nil, appErrors.Clone(appErrors.ErrInvalidLogin, "")
		case errors.Is(err, repository.ErrCodeConsumed):
			return nil, appErrors.Clone(appErrors.ErrCodeConsumed, "")
		default:
			return nil, storeFault(err, "failed to validate login code")
		}
	}
	return identity, nil
}

// ListCodes returns every issued code, newest first.
func (s *CodeService) ListCodes(ctx context.Context) ([]models.LoginCodeDetail, error) {
	codes, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeFault(err, "failed to list login codes")
	}
	if codes == nil {
		codes = []models.LoginCodeDetail{}
	}
	return codes, nil
}

// ProvisionUser creates a user together with the code they will log in with.
func (s *CodeService) ProvisionUser(ctx context.Context, req models.ProvisionUserRequest) (*models.ProvisionedUser, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid user payload")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "unknown role")
	}

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		value, err := s.draw()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal, "failed to draw login code")
		}
		user := &models.User{Name: req.Name, Role: role}
		ok, err := s.repo.ProvisionUser(ctx, user, &models.LoginCode{Code: value, Role: role})
		if err != nil {
			return nil, storeFault(err, "failed to provision user")
		}
		if ok {
			s.metrics.RecordCodeIssued(string(role))
			s.logger.Info("user provisioned", zap.String("user_id", user.ID), zap.String("role", string(role)))
			return &models.ProvisionedUser{User: *user, LoginCode: value}, nil
		}
		s.logger.Warn("login code collision", zap.Int("attempt", attempt))
	}
	return nil, appErrors.Clone(appErrors.ErrCodeCollision, "")
}

func (s *CodeService) draw() (string, error) {
	out := make([]byte, 0, s.config.Length)
	buf := make([]byte, s.config.Length)
	for len(out) < s.config.Length {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeRejectAbove {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == s.config.Length {
				break
			}
		}
	}
	return string(out), nil
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
