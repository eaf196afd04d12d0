package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies the opaque session tokens carried in
// the session cookie. A token binds a user id under an HMAC signature;
// it carries no expiry of its own — session lifetime is enforced
// entirely by the cookie's MaxAge, and there is no server-side session
// store to revoke against.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) TokenIssuer {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return TokenIssuer{secret: secretCopy}
}

func (i TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: empty user id")
	}

	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse returns the user id a token was issued for, or false when the
// token is malformed or its signature does not verify.
func (i TokenIssuer) Parse(tokenString string) (string, bool) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
