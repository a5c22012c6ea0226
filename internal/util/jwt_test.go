package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestValidateToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(1, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(1, "secret", -time.Minute)
	require.NoError(t, err)

	noneToken := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	unsigned, err := noneToken.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong secret": valid,
		"expired":      expired,
		"garbage":      "not.a.token",
		"alg none":     unsigned,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			secret := "secret"
			if name == "wrong secret" {
				secret = "other"
			}
			_, err := ValidateToken(tok, secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
