package domain

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Identity is the request-scoped caller identity, derived from the identity
// provider's token on every request. It is passed explicitly into workflow
// calls; there is no ambient current-user state anywhere in the process.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
