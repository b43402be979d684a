package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"siteapi/internal/domain"
)

// Unsubscribe links in newsletter mails carry a standard HS256 JWT rather
// than the session-token wire format: the link survives in inboxes for a long
// time and the JWT shape keeps it decodable by anything.

// NewUnsubscribeToken creates a signed unsubscribe token for email.
func NewUnsubscribeToken(email string, ttl time.Duration, secret string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = email
	claims["purpose"] = "unsubscribe"
	claims["exp"] = time.Now().Add(ttl).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseUnsubscribeToken validates an unsubscribe token and returns the
// subscriber email it was issued for.
func ParseUnsubscribeToken(tokenString string, secret string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	if !token.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if purpose, _ := claims["purpose"].(string); purpose != "unsubscribe" {
		return "", domain.ErrTokenInvalid
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", domain.ErrTokenInvalid
	}
	return email, nil
}
