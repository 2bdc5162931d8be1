package auth

import (
	"testing"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Generate(&models.User{ID: 42, Role: models.RoleTeacher})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuing := NewTokenService("secret-a", time.Hour)
	validating := NewTokenService("secret-b", time.Hour)

	token, err := issuing.Generate(&models.User{ID: 42, Role: models.RoleStudent})
	assert.NoError(t, err)

	_, err = validating.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Generate(&models.User{ID: 42, Role: models.RoleStudent})
	assert.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	_, err := svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
