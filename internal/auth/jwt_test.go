package auth

import (
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t-password", hash)

	assert.NoError(t, CheckPassword(hash, "s3cr3t-password"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute, "jobboard")

	token, expiresAt, err := m.GenerateToken(42, "alice", domain.RoleEmployer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.Identity{UserID: 42, Role: domain.RoleEmployer}, claims.Identity())
}

func TestJWTManager_VerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, "jobboard")
	valid, _, err := m.GenerateToken(7, "bob", domain.RoleJobSeeker)
	require.NoError(t, err)

	expired := NewJWTManager("test-secret", time.Minute, "jobboard")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _, err := expired.GenerateToken(7, "bob", domain.RoleJobSeeker)
	require.NoError(t, err)

	otherSecret, _, err := NewJWTManager("other-secret", time.Minute, "jobboard").GenerateToken(7, "bob", domain.RoleJobSeeker)
	require.NoError(t, err)

	otherIssuer, _, err := NewJWTManager("test-secret", time.Minute, "someone-else").GenerateToken(7, "bob", domain.RoleJobSeeker)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7, Role: domain.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: valid},
		{name: "expired token", token: expiredToken, wantErr: true},
		{name: "wrong secret", token: otherSecret, wantErr: true},
		{name: "wrong issuer", token: otherIssuer, wantErr: true},
		{name: "unsigned token", token: noneToken, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.VerifyToken(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(7), claims.UserID)
			}
		})
	}
}
