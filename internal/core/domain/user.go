package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleStore   = "store"
	RolePartner = "partner"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// User models an authenticated actor: a marketplace admin, a store owner, or
// a delivery partner. StoreID and PartnerID scope the store and partner roles.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	StoreID      string    `json:"store_id,omitempty"`
	PartnerID    string    `json:"partner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
