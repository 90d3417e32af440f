package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "665f1f77bcf86cd799439011"

func TestJWTUtil_Issue(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, err := jwtUtil.Issue(testUserID)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testUserID, claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
}

func TestJWTUtil_Issue_EmptyUserID(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	_, err := jwtUtil.Issue("")
	assert.Error(t, err)
}

func TestJWTUtil_Verify(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, err := jwtUtil.Issue(testUserID)
	require.NoError(t, err)

	userID, err := jwtUtil.Verify(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}

func TestJWTUtil_Verify_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	_, err := jwtUtil.Verify("invalid.token.string")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = jwtUtil.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_ExpiredToken(t *testing.T) {
	issuedAt := time.Now()
	jwtUtil := NewJWTUtil("secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	tokenString, err := jwtUtil.Issue(testUserID)
	require.NoError(t, err)

	userID, err := jwtUtil.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) }).Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)

	_, err = jwtUtil.WithClock(func() time.Time { return issuedAt.Add(61 * time.Minute) }).Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_NegativeTTL(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Hour) // Token expires in the past

	tokenString, err := jwtUtil.Issue(testUserID)
	require.NoError(t, err)

	_, err = jwtUtil.Verify(tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTUtil_Verify_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour)

	tokenString, _ := jwtUtil1.Issue(testUserID)

	_, err := jwtUtil2.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_TamperedPayload(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	tokenString, err := jwtUtil.Issue(testUserID)
	require.NoError(t, err)

	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)
	forged := &JWTClaims{
		UserID: "someone-else",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte("attacker"))
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = jwtUtil.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	claims := &JWTClaims{
		UserID: testUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	// Sign with the same secret, as the key type is compatible for HMAC algorithms
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_MissingExpiry(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	claims := &JWTClaims{
		UserID:           testUserID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: testUserID},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = jwtUtil.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUtil_Verify_MissingUserID(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = jwtUtil.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
