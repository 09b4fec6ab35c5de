package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type loginValidator interface {
	ValidateLogin(ctx context.Context, code, role string) (*models.Identity, error)
}

type attemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// AuthConfig defines configuration for session issuance and login throttling.
type AuthConfig struct {
	AccessTokenExpiry time.Duration
	Issuer            string
	MaxFailedAttempts int
	FailureWindow     time.Duration
}

// AuthService turns a validated login code into a session token. The signing
// key is drawn when the service is built, so tokens never outlive the process.
type AuthService struct {
	codes     loginValidator
	attempts  attemptStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	secret    []byte
	metrics   *MetricsService
}

// NewAuthService constructs an AuthService instance. attempts may be nil to
// disable throttling.
func NewAuthService(codes loginValidator, attempts attemptStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 8 * time.Hour
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return &AuthService{
		codes:     codes,
		attempts:  attempts,
		validator: validate,
		logger:    logger,
		config:    config,
		secret:    secret,
		metrics:   metrics,
	}, nil
}

// Login validates the code for the claimed role and issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "invalid login payload")
	}

	if s.throttled(ctx, req.IP) {
		s.metrics.RecordLogin("rate_limited")
		return nil, appErrors.Clone(appErrors.ErrRateLimited, "")
	}

	identity, err := s.codes.ValidateLogin(ctx, req.Code, req.Role)
	if err != nil {
		appErr := appErrors.FromError(err)
		switch appErr.Kind {
		case appErrors.KindNotFound, appErrors.KindUnauthorized, appErrors.KindConflict:
			s.recordFailure(ctx, req.IP)
		}
		s.metrics.RecordLogin(appErr.Code)
		s.logger.Info("login rejected", zap.String("code", appErr.Code), zap.String("ip", req.IP))
		return nil, err
	}

	s.resetFailures(ctx, req.IP)

	token, issuedAt, err := s.generateAccessToken(identity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal, "failed to create access token")
	}
	s.metrics.RecordLogin("ok")
	s.logger.Info("login succeeded", zap.String("user_id", identity.UserID), zap.String("role", string(identity.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        *identity,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(identity *models.Identity) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: identity.UserID,
		Name:   identity.Name,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// throttled fails open: a broken attempt store never blocks logins.
func (s *AuthService) throttled(ctx context.Context, ip string) bool {
	if s.attempts == nil || s.config.MaxFailedAttempts <= 0 || ip == "" {
		return false
	}
	count, err := s.attempts.Count(ctx, ip)
	if err != nil {
		s.logger.Warn("login attempt lookup failed", zap.Error(err))
		return false
	}
	return count >= int64(s.config.MaxFailedAttempts)
}

func (s *AuthService) recordFailure(ctx context.Context, ip string) {
	if s.attempts == nil || s.config.MaxFailedAttempts <= 0 || ip == "" {
		return
	}
	if _, err := s.attempts.Increment(ctx, ip, s.config.FailureWindow); err != nil {
		s.logger.Warn("failed to record login attempt", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, ip string) {
	if s.attempts == nil || ip == "" {
		return
	}
	if err := s.attempts.Reset(ctx, ip); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}
}
