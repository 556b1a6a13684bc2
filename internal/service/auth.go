package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/go-commerce/internal/server"
)

// AuthService configures the Clerk SDK with the secret key that admin
// session tokens are verified against.
type AuthService struct {
	server *server.Server
}

func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server: s,
	}
}
