package authz

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Valid reports whether role is empty (admin by default) or a known role.
func Valid(role string) bool {
	return role == "" || role == RoleAdmin || role == RoleViewer
}

// Normalize maps an empty role to RoleAdmin. Unknown roles become
// RoleViewer: опечатка в конфиге не должна давать права на запись.
func Normalize(role string) string {
	if role == "" || role == RoleAdmin {
		return RoleAdmin
	}
	return RoleViewer
}

func IsReadOnly(role string) bool {
	return role != RoleAdmin
}
