// Package security provides token issuance and verification
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes session tokens from password-reset tokens.
// The two classes are never interchangeable.
type TokenType string

const (
	SessionToken TokenType = "session"
	ResetToken   TokenType = "password_reset"
)

// Claims represents JWT claims structure
type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed tokens
type TokenService struct {
	secret            []byte
	sessionExpiration time.Duration
	resetExpiration   time.Duration
}

// NewTokenService creates a token service from configuration
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:            []byte(cfg.Auth.JWTSecret),
		sessionExpiration: cfg.Auth.SessionExpiration,
		resetExpiration:   cfg.Auth.ResetExpiration,
	}
}

// IssueSessionToken creates a signed session token for the user
func (s *TokenService) IssueSessionToken(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, SessionToken, s.sessionExpiration)
}

// IssueResetToken creates a short-lived password-reset token
func (s *TokenService) IssueResetToken(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, ResetToken, s.resetExpiration)
}

func (s *TokenService) issue(userID uuid.UUID, email string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID.String(),
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cookingcapture",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken verifies a session token and returns its claims.
// Expired tokens surface as TOKEN_EXPIRED, everything else as
// TOKEN_INVALID, so clients can distinguish re-login from tampering.
func (s *TokenService) VerifySessionToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, SessionToken)
}

// VerifyResetToken verifies a password-reset token and returns its
// claims. Session tokens are rejected here: a stolen session must not
// allow a password change through the reset path.
func (s *TokenService) VerifyResetToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, ResetToken)
}

func (s *TokenService) verify(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpiredError()
		}
		return nil, apperrors.NewTokenInvalidError().WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewTokenInvalidError()
	}
	if claims.TokenType != expected {
		return nil, apperrors.NewTokenInvalidError()
	}
	return claims, nil
}
