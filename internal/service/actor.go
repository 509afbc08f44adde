package service

import (
	"github.com/google/uuid"
	"github.com/zeroclasses/zero-backend/internal/model"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role model.Role
}

// Can reports whether the actor's role grants p.
func (a Actor) Can(p model.Permission) bool {
	return a.Role.Can(p)
}

// IsStudent reports whether the actor is a student.
func (a Actor) IsStudent() bool {
	return a.Role == model.RoleStudent
}
