package model

import (
	"fmt"
)

type Role string

// User roles
const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User represents an identity record. Doctors and patients each own exactly one.
type User struct {
	Base
	Username     *string `json:"username" db:"username"`
	PasswordHash string  `json:"-" db:"password_hash"`
	FirstName    string  `json:"first_name" db:"first_name"`
	LastName     string  `json:"last_name" db:"last_name"`
	MiddleName   *string `json:"middle_name" db:"middle_name"`
	Email        string  `json:"email" db:"email"`
	Role         Role    `json:"-" db:"role"`
	IsStaff      bool    `json:"-" db:"is_staff"`
}

func (u *User) String() string {
	if u.MiddleName != nil && *u.MiddleName != "" {
		return fmt.Sprintf("%s %s %s (%s)", u.FirstName, *u.MiddleName, u.LastName, u.Role)
	}
	return fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Role)
}

// UserRequest is the nested user payload accepted by the doctor and patient resources.
// Role is not part of it: the resource decides the role.
type UserRequest struct {
	Username   *string `json:"username" binding:"omitempty,min=1,max=150"`
	Password   *string `json:"password" binding:"omitempty,min=1"`
	FirstName  string  `json:"first_name" binding:"max=150"`
	LastName   string  `json:"last_name" binding:"required,max=150"`
	MiddleName *string `json:"middle_name" binding:"omitempty,max=100"`
	Email      string  `json:"email" binding:"omitempty,email"`
}

// Apply copies the request onto u. Username and password are handled by the provisioning service.
func (r *UserRequest) Apply(u *User) {
	u.FirstName = r.FirstName
	u.LastName = r.LastName
	u.MiddleName = r.MiddleName
	u.Email = r.Email
}
