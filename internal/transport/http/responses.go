package httptransport

import (
	"time"

	"userdir/internal/identity/models"
)

// UserResponse is the full account view returned to administrative
// callers. The secret never leaves the service.
type UserResponse struct {
	ID                   string  `json:"id"`
	IdentificationNumber int64   `json:"identification_number"`
	IDTypeID             int     `json:"id_type_id"`
	Name                 string  `json:"name"`
	Lastname             string  `json:"lastname"`
	BirthDate            string  `json:"birth_date,omitempty"`
	Address              string  `json:"address"`
	Phone                string  `json:"phone"`
	Email                string  `json:"email"`
	BaseSalary           float64 `json:"base_salary"`
	RoleID               int     `json:"role_id"`
}

// BasicUserResponse is the reduced view served to non-administrative
// lookups and batch resolution.
type BasicUserResponse struct {
	IdentificationNumber int64   `json:"identification_number"`
	Name                 string  `json:"name"`
	Lastname             string  `json:"lastname"`
	Email                string  `json:"email"`
	BaseSalary           float64 `json:"base_salary"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// ExistsResponse answers identification existence probes.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:                   u.ID.String(),
		IdentificationNumber: u.IdentificationNumber,
		IDTypeID:             u.IDTypeID,
		Name:                 u.Name,
		Lastname:             u.Lastname,
		Address:              u.Address,
		Phone:                u.Phone,
		Email:                u.Email,
		BaseSalary:           u.BaseSalary,
		RoleID:               u.RoleID,
	}
	if !u.BirthDate.IsZero() {
		resp.BirthDate = u.BirthDate.Format(birthDateLayout)
	}
	return resp
}

func toUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toBasicResponse(u *models.User) BasicUserResponse {
	return BasicUserResponse{
		IdentificationNumber: u.IdentificationNumber,
		Name:                 u.Name,
		Lastname:             u.Lastname,
		Email:                u.Email,
		BaseSalary:           u.BaseSalary,
	}
}

func toBasicResponses(users []*models.User) []BasicUserResponse {
	out := make([]BasicUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toBasicResponse(u))
	}
	return out
}

func ttlSeconds(ttl time.Duration) int64 { return int64(ttl.Seconds()) }
