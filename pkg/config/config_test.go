package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8, cfg.LoginCodes.Length)
	assert.Equal(t, 5, cfg.LoginCodes.MaxAttempts)
	assert.Equal(t, CodePolicyReusable, cfg.LoginCodes.Policy)
	assert.False(t, cfg.LoginCodes.SingleUse())
	assert.Equal(t, 2000, cfg.Feedback.MaxCommentLength)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.LoginWindow)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperClampsLoginCodeSettings(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LOGIN_CODE_LENGTH", 4)
	v.Set("LOGIN_CODE_MAX_ATTEMPTS", 0)
	v.Set("LOGIN_CODE_POLICY", " Single_Use ")

	cfg := fromViper(v)
	assert.Equal(t, 8, cfg.LoginCodes.Length)
	assert.Equal(t, 5, cfg.LoginCodes.MaxAttempts)
	assert.True(t, cfg.LoginCodes.SingleUse())
}

func TestFromViperUnknownPolicyFallsBackToReusable(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LOGIN_CODE_POLICY", "forever")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("JWT_EXPIRATION", "not-a-duration")

	cfg := fromViper(v)
	assert.Equal(t, CodePolicyReusable, cfg.LoginCodes.Policy)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 8*time.Hour, cfg.JWT.Expiration)
}
