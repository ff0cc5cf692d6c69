// Package entity contains the core business objects of the project.
package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the capability claim carried by an authenticated identity.
type Role string

const (
	// RoleAdmin grants order approval and back-office operations.
	RoleAdmin Role = "admin"
	// RoleCustomer is the default role of every registered user.
	RoleCustomer Role = "customer"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer:
		return true
	default:
		return false
	}
}

// RoleFromClaim maps a raw role claim onto a Role. Anything that is not
// exactly the admin claim is treated as the default role.
func RoleFromClaim(claim string) Role {
	if strings.EqualFold(strings.TrimSpace(claim), string(RoleAdmin)) {
		return RoleAdmin
	}

	return RoleCustomer
}

// Actor is the caller of a usecase: an opaque authenticated identity plus its role.
// It is passed explicitly into every operation that needs authorization.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor builds an Actor from an identity and a raw role claim.
func NewActor(userID uuid.UUID, roleClaim string) Actor {
	return Actor{UserID: userID, Role: RoleFromClaim(roleClaim)}
}

// IsAuthenticated reports whether the actor carries an identity.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != uuid.Nil
}

// IsAdmin reports whether the actor may perform admin-only operations.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == RoleAdmin
}
