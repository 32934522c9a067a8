package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret string

func Init(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is not set")
	}

	jwtSecret = secret

	return nil
}

// TokenClaims is the identity carried by a verified token.
type TokenClaims struct {
	UID   uint
	Email string
}

// VerifyToken validates an HS256 token issued by the identity service and
// extracts its claims. Tokens signed with any other method are rejected.
func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	userID, ok := claims["user_id"].(float64)

	if !ok {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	email, _ := claims["email"].(string)

	return &TokenClaims{
		UID:   uint(userID),
		Email: email,
	}, nil
}
