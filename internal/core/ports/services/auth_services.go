package services

import (
	"context"
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
)

// AuthSvcFacade defines registration, login and bearer token checks.
type AuthSvcFacade interface {
	// Register creates a user with a bcrypt password hash.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// Login checks the credentials and issues a signed access token.
	Login(ctx context.Context, req dto.LoginRequest) (string, time.Time, error)

	// ValidateToken parses an access token and returns the user ID it was issued for.
	ValidateToken(tokenString string) (string, error)
}
