package models

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Actor is the authenticated identity attached to every workflow operation.
// It is supplied by the out-of-scope authentication layer.
type Actor struct {
	UserID    uuid.UUID `json:"user_id"`
	CompanyID uuid.UUID `json:"company_id"`
	Role      Role      `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor's company owns the given company-scoped
// resource.
func (a Actor) Owns(companyID uuid.UUID) bool {
	return a.CompanyID == companyID
}
