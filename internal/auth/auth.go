package auth

import "github.com/golang-jwt/jwt/v5"

// Authenticator issues and checks the bearer tokens that guard the operator routes.
type Authenticator interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
