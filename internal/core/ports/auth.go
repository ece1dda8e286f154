package ports

import (
	"context"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// AuthRepository defines the interface for user authentication persistence.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RegisterInput carries a new account request. StoreID is required for the
// store role, PartnerID for the partner role.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Role      string
	StoreID   string
	PartnerID string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
