package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

// AuthService validates access tokens issued by the upstream auth service.
// Token issuance, refresh and credential handling all live upstream; this
// service only needs to recover the tenant from the claims.
type AuthService struct {
	secret string
}

// NewAuthService creates the token validator.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: secret}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.CompanyID == 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no tenant")
	}

	return claims, nil
}
