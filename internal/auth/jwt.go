package auth

import (
	"fmt"
	"time"

	"adisyon-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTCustomClaims struct {
	UserID     uint            `json:"user_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	BusinessID *uint           `json:"business_id"`
	jwt.RegisteredClaims
}

const tokenTTL = 12 * time.Hour // bir vardiya + pay

func GenerateToken(secret string, user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		BusinessID: user.BusinessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("geçersiz imzalama yöntemi")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token çözümlenemedi")
	}
	return claims, nil
}
