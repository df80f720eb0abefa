// Package auth issues and verifies the HS256 tokens returned at login and
// carried by devices on upload to bind a frame to its owning account.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Pradeepp09/SITE-server/internal/common"
)

// Claims carries the standard registered claims plus the account's contact
// address, which is the owner reference used across the ledger.
type Claims struct {
	jwt.RegisteredClaims
	Email string
}

func GenerateToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetEmailFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.Wrap(common.KindUnauthorized, "invalid token", err)
	}

	if !token.Valid {
		return "", common.ErrUnauthorized
	}

	return claims.Email, nil
}
