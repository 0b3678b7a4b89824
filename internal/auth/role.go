package auth

import "fmt"

// Role is the closed set of caller roles. Wire values are parsed once at the
// boundary; everything past the verifier works with the typed value.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRevendeur Role = "revendeurs"
	RoleWebshop   Role = "webshop"
	RoleClient    Role = "client"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleRevendeur, RoleWebshop, RoleClient:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
