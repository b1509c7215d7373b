package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ResetTokenService issues and verifies the short-lived signed tokens
// embedded in password-reset emails. Tokens are stateless; possession of
// an unexpired token is the proof.
type ResetTokenService struct {
	Secret []byte
}

const resetTokenTTL = 30 * time.Minute

type resetClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (ts *ResetTokenService) Issue(userID string) (string, error) {
	claims := resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(resetTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id the token was issued for, or an error for
// anything expired, tampered with, or signed differently.
func (ts *ResetTokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ts.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid reset token: %w", err)
	}

	claims, ok := token.Claims.(*resetClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", errors.New("invalid reset token")
	}
	return claims.UserID, nil
}
