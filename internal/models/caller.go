package models

type Role string

const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleTrainer || r == RoleAdmin
}

// Caller is the verified identity supplied by the auth layer.
type Caller struct {
	ID             int64
	Role           Role
	MembershipPlan string
}
