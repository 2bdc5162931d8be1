// Package auth issues and verifies the platform's bearer credentials.
// REST requests carry them in the Authorization header; realtime
// handshakes carry them in a query parameter, since browser WebSocket
// clients cannot set custom headers.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/Ivan2330/english-platform-deploy/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

const issuer = "english-platform"

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and validates HS256 JWTs.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Generate returns a signed token for the user.
func (s *TokenService) Generate(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.lifetime).Unix(),
		"iss":  issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses the token and returns the user id it was issued for.
func (s *TokenService) Validate(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
