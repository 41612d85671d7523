package security

import (
	"testing"
	"time"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(sessionTTL, resetTTL time.Duration) *TokenService {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.SessionExpiration = sessionTTL
	cfg.Auth.ResetExpiration = resetTTL
	return NewTokenService(cfg)
}

func TestSessionTokenRoundtrip(t *testing.T) {
	svc := newTestTokenService(time.Hour, time.Minute)
	userID := uuid.New()

	token, err := svc.IssueSessionToken(userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, SessionToken, claims.TokenType)
}

func TestExpiredTokenIsDistinguished(t *testing.T) {
	svc := newTestTokenService(-time.Minute, time.Minute)

	token, err := svc.IssueSessionToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(token)
	assert.True(t, apperrors.Is(err, apperrors.CodeTokenExpired))
}

func TestMalformedTokenIsInvalid(t *testing.T) {
	svc := newTestTokenService(time.Hour, time.Minute)

	_, err := svc.VerifySessionToken("not.a.token")
	assert.True(t, apperrors.Is(err, apperrors.CodeTokenInvalid))
}

func TestWrongSecretIsInvalid(t *testing.T) {
	issuer := newTestTokenService(time.Hour, time.Minute)
	verifier := &TokenService{secret: []byte("other-secret")}

	token, err := issuer.IssueSessionToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifySessionToken(token)
	assert.True(t, apperrors.Is(err, apperrors.CodeTokenInvalid))
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(time.Hour, time.Hour)
	userID := uuid.New()

	session, err := svc.IssueSessionToken(userID, "alice@example.com")
	require.NoError(t, err)
	reset, err := svc.IssueResetToken(userID, "alice@example.com")
	require.NoError(t, err)

	// A session token must not pass the reset path
	_, err = svc.VerifyResetToken(session)
	assert.True(t, apperrors.Is(err, apperrors.CodeTokenInvalid))

	// A reset token must not grant a session
	_, err = svc.VerifySessionToken(reset)
	assert.True(t, apperrors.Is(err, apperrors.CodeTokenInvalid))

	// Each passes its own path
	claims, err := svc.VerifyResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, ResetToken, claims.TokenType)
}
