package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level carried in a user's token.
type Role string

const (
	RoleUser  Role = "usuario"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
type User struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Nombre            string    `json:"nombre" db:"nombre"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	Rol               Role      `json:"rol" db:"rol"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty" db:"profile_picture_url"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller owns the resource or is an admin.
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsAdmin() || i.UserID == ownerID
}

// RegisterRequest is the payload of POST /auth/register. Any role sent by the
// client is ignored.
type RegisterRequest struct {
	Nombre     string `json:"nombre" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required,min=6"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required"`
}

// LoginResponse carries the signed token.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest is the payload of PATCH /auth/perfil.
type UpdateProfileRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=1"`
	Email  *string `json:"email" validate:"omitempty,email"`
}
