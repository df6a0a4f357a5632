package accounts_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceGenerate(t *testing.T) {
	subject := uuid.New().String()
	ts := accounts.NewTokenService([]byte("test-signing-key"), 0, nil)

	token, err := ts.Generate(subject, accounts.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, subject, claims.Subject())
	assert.Equal(t, subject, claims.UserID())
	assert.Equal(t, accounts.RoleUser, claims.Role())
	assert.False(t, claims.IsAdmin())
}

func TestTokenServiceSevenDayWindow(t *testing.T) {
	ts := accounts.NewTokenService([]byte("test-signing-key"), 0, nil)

	token, err := ts.Generate(uuid.New().String(), accounts.RoleUser)
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	window := claims.Expires().Sub(claims.IssuedAt())
	assert.Equal(t, 168*time.Hour, window)
}

func TestTokenServiceAdminToken(t *testing.T) {
	ts := accounts.NewTokenService([]byte("test-signing-key"), 0, nil)

	token, err := ts.Generate(accounts.AdminSubjectID, accounts.RoleAdmin)
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, accounts.AdminSubjectID, claims.Subject())
	assert.True(t, claims.IsAdmin())
}

func TestTokenServiceValidateDenials(t *testing.T) {
	key := []byte("test-signing-key")
	ts := accounts.NewTokenService(key, 0, nil)

	valid, err := ts.Generate(uuid.New().String(), accounts.RoleUser)
	require.NoError(t, err)

	expired, err := ts.SignClaims(&accounts.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-300 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-132 * time.Hour)),
		},
		UserRole: accounts.RoleUser,
	})
	require.NoError(t, err)

	otherKeyService := accounts.NewTokenService([]byte("a-different-key"), 0, nil)
	forged, err := otherKeyService.Generate(uuid.New().String(), accounts.RoleAdmin)
	require.NoError(t, err)

	// Flip a character inside the signature segment.
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage token", token: "not-a-jwt"},
		{name: "Empty token", token: ""},
		{name: "Expired token", token: expired},
		{name: "Wrong signing key", token: forged},
		{name: "Tampered signature", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ts.Validate(tt.token)
			assert.Nil(t, claims)
			// All denials are indistinguishable.
			assert.ErrorIs(t, err, accounts.ErrInvalidCredential)
		})
	}
}

func TestTokenServiceRejectsUnexpectedAlg(t *testing.T) {
	ts := accounts.NewTokenService([]byte("test-signing-key"), 0, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  accounts.AdminSubjectID,
		"role": accounts.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := ts.Validate(unsigned)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, accounts.ErrInvalidCredential)
}
