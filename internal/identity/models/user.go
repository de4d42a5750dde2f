// Package models holds the identity records tracked by the directory.
// Field-level business rules live in the identity service so bounds stay
// configurable; these types carry data plus small structural helpers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the primary identity record. Secret holds the bcrypt hash at
// rest; plaintext only exists transiently inside create/edit/login flows.
type User struct {
	ID                   uuid.UUID `json:"id"`
	IdentificationNumber int64     `json:"identification_number"`
	IDTypeID             int       `json:"id_type_id"`
	Name                 string    `json:"name"`
	Lastname             string    `json:"lastname"`
	BirthDate            time.Time `json:"birth_date"`
	Address              string    `json:"address"`
	Phone                string    `json:"phone"`
	Email                string    `json:"email"`
	BaseSalary           float64   `json:"base_salary"`
	RoleID               int       `json:"role_id"`
	Secret               string    `json:"-"`
}

// SharesEmail reports whether other holds the same email.
func (u *User) SharesEmail(other *User) bool {
	return other != nil && u.Email == other.Email
}

// SharesIdentification reports whether other holds the same identification
// number.
func (u *User) SharesIdentification(other *User) bool {
	return other != nil && u.IdentificationNumber == other.IdentificationNumber
}

// IdType is reference data describing an identification document class
// (e.g. national ID card, passport).
type IdType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Role is reference data for access roles carried in issued tokens.
type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
