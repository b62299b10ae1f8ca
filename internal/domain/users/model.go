package users

import (
	"time"

	"pet-clinic-api/internal/ports/auth"
)

// User es la cuenta persistida. PasswordHash nunca sale por la API.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

func (u User) Principal() auth.Principal {
	return auth.Principal{ID: u.ID, Role: u.Role}
}
