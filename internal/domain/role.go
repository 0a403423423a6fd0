package domain

// Role names stamped on users and JWT claims.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
