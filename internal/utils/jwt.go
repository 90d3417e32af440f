package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long a session token stays valid
const DefaultTokenTTL = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTUtil issues and verifies HS256 session tokens
type JWTUtil struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, ttl time.Duration) *JWTUtil {
	return &JWTUtil{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the util reading time from now.
func (ju *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	cp := *ju
	cp.now = now
	return &cp
}

// TTL returns the lifetime of issued tokens
func (ju *JWTUtil) TTL() time.Duration {
	return ju.ttl
}

// Issue generates a signed token bound to userID
func (ju *JWTUtil) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue token for empty user id")
	}
	issuedAt := ju.now()
	claims := &JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ju.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify validates the token and returns the user id it is bound to.
// Every failure is reported as ErrInvalidToken or ErrTokenExpired.
func (ju *JWTUtil) Verify(tokenString string) (string, error) {
	claims, err := ju.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return "", fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims.UserID, nil
}

func (ju *JWTUtil) parse(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
