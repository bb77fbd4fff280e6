package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("u1", "teacher", "Jane", "rollcall", testKey, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, "rollcall")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, "Jane", claims.Name)
}

func TestParseRejects(t *testing.T) {
	pair, err := Issue("u1", "teacher", "", "rollcall", testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.RefreshToken, testKey, "rollcall")
	assert.Error(t, err, "refresh token must not authenticate requests")

	_, err = Parse(pair.AccessToken, "other-key", "rollcall")
	assert.Error(t, err)

	_, err = Parse(pair.AccessToken, testKey, "someone-else")
	assert.Error(t, err)

	expired, err := Issue("u1", "teacher", "", "rollcall", testKey, -time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = Parse(expired.AccessToken, testKey, "rollcall")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = Parse("not-a-token", testKey, "")
	assert.Error(t, err)
}

func TestParseRequiresSubject(t *testing.T) {
	pair, err := Issue("", "teacher", "", "", testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = Parse(pair.AccessToken, testKey, "")
	assert.Error(t, err)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Role: "teacher",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Audience:  jwt.ClaimStrings{audienceAccess},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testKey))
	require.NoError(t, err)
	_, err = Parse(tok, testKey, "")
	assert.Error(t, err)
}
