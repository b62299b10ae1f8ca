package auth

// Role es el rol global del usuario. Sólo existen admin y user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal es la identidad autenticada que sale de un token válido.
// Se reconstruye en cada request y no se persiste.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
