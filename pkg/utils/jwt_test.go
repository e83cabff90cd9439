package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "invoicer-api", time.Hour)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "owner@acme.test")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "owner@acme.test", claims.Email)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "invoicer-api", time.Hour)
	id := uuid.New()

	tests := []struct {
		name  string
		token func() string
	}{
		{"wrong secret", func() string {
			tok, _ := NewJWTManager("other", "invoicer-api", time.Hour).GenerateAccessToken(id, "")
			return tok
		}},
		{"wrong issuer", func() string {
			tok, _ := NewJWTManager("secret", "someone-else", time.Hour).GenerateAccessToken(id, "")
			return tok
		}},
		{"expired", func() string {
			tok, _ := NewJWTManager("secret", "invoicer-api", -time.Minute).GenerateAccessToken(id, "")
			return tok
		}},
		{"garbage", func() string { return "not.a.token" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(tt.token())
			assert.Error(t, err)
		})
	}
}

func TestJWTManager_SubjectFallback(t *testing.T) {
	m := NewJWTManager("secret", "", time.Hour)
	id := uuid.New()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
}
