package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEducator Role = "EDUCATOR"
	RoleParent   Role = "PARENT"
)

// Enrollment is a parent/child registration. It doubles as the parent account.
type Enrollment struct {
	ID           string    `json:"id"`
	ParentName   string    `json:"parent_name"`
	ChildName    string    `json:"child_name"`
	Email        string    `json:"email"`
	Program      string    `json:"program"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Educator struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Program      string    `json:"program"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the resolved owner of a session.
type Identity struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Program string `json:"program,omitempty"`
	// ChildName is only set for parents.
	ChildName string `json:"child_name,omitempty"`
}

func (e Enrollment) Identity() Identity {
	return Identity{
		ID:        e.ID,
		Role:      RoleParent,
		Name:      e.ParentName,
		Email:     e.Email,
		Program:   e.Program,
		ChildName: e.ChildName,
	}
}

func (e Educator) Identity() Identity {
	return Identity{
		ID:      e.ID,
		Role:    RoleEducator,
		Name:    e.Name,
		Email:   e.Email,
		Program: e.Program,
	}
}
