package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 15 * time.Minute,
		Issuer:     "test-issuer",
	})
}

func newTestUser(siteID *uuid.UUID) *identity.User {
	u := &identity.User{Username: "sse.one", Role: identity.RoleSiteStoreIncharge, SiteID: siteID}
	u.ID = uuid.New()
	return u
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateToken(newTestUser(nil))

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestValidateToken_RoundTripsClaims(t *testing.T) {
	svc := newTestJWTService()
	siteID := uuid.New()
	user := newTestUser(&siteID)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)

	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "sse.one", claims.Username)
	assert.Equal(t, identity.RoleSiteStoreIncharge, claims.GetRole())
	require.NotNil(t, claims.GetSiteUUID())
	assert.Equal(t, siteID, *claims.GetSiteUUID())
}

func TestValidateToken_NoSite(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateToken(newTestUser(nil))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, claims.GetSiteUUID())
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: -time.Minute,
		Issuer:     "test-issuer",
	})

	token, err := svc.GenerateToken(newTestUser(nil))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateToken(newTestUser(nil))
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "another-secret-key-at-least-32-ch",
		Expiration: time.Minute,
		Issuer:     "test-issuer",
	})
	_, err = other.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	token, err := newTestJWTService().GenerateToken(newTestUser(nil))
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Minute,
		Issuer:     "someone-else",
	})
	_, err = other.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: uuid.New().String(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
