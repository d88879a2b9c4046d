package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/domain"
)

func TestTokenManager(t *testing.T) {
	mgr := NewTokenManager("test-secret", "toolcrib", "toolcrib-api", time.Hour)

	t.Run("Round Trip", func(t *testing.T) {
		token, err := mgr.GenerateAccessToken(42, domain.RoleToolCribManager)
		require.NoError(t, err)

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, domain.RoleToolCribManager, claims.Role)
		assert.Equal(t, domain.Actor{UserID: 42, Role: domain.RoleToolCribManager}, claims.Actor())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", "toolcrib", "toolcrib-api", time.Hour)
		token, err := other.GenerateAccessToken(42, domain.RoleWorker)
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong Audience", func(t *testing.T) {
		other := NewTokenManager("test-secret", "toolcrib", "someone-else", time.Hour)
		token, err := other.GenerateAccessToken(42, domain.RoleWorker)
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := UserClaims{
			UserID: 42,
			Role:   domain.RoleWorker,
			Type:   TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    "toolcrib",
				Audience:  jwt.ClaimStrings{"toolcrib-api"},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong Type", func(t *testing.T) {
		claims := UserClaims{
			UserID: 42,
			Role:   domain.RoleWorker,
			Type:   "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
				Issuer:    "toolcrib",
				Audience:  jwt.ClaimStrings{"toolcrib-api"},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Unknown Role", func(t *testing.T) {
		token, err := mgr.GenerateAccessToken(42, domain.Role("JANITOR"))
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := mgr.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
