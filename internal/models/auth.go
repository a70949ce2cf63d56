package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the upstream auth service.
// CompanyID is the authenticated tenant; every request operates under it.
type JWTClaims struct {
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
