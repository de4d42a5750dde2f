package httptransport

import (
	"time"

	"github.com/google/uuid"

	"userdir/internal/identity/models"
	dErrors "userdir/pkg/domain-errors"
)

const birthDateLayout = "2006-01-02"

// CreateUserRequest is the account creation payload.
type CreateUserRequest struct {
	IdentificationNumber int64   `json:"identification_number"`
	IDTypeID             int     `json:"id_type_id"`
	Name                 string  `json:"name"`
	Lastname             string  `json:"lastname"`
	BirthDate            string  `json:"birth_date"`
	Address              string  `json:"address"`
	Phone                string  `json:"phone"`
	Email                string  `json:"email"`
	BaseSalary           float64 `json:"base_salary"`
	RoleID               int     `json:"role_id"`
	Secret               string  `json:"secret"`
}

// ToModel converts the payload into the domain record.
func (r CreateUserRequest) ToModel() (*models.User, error) {
	birthDate, err := parseBirthDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &models.User{
		IdentificationNumber: r.IdentificationNumber,
		IDTypeID:             r.IDTypeID,
		Name:                 r.Name,
		Lastname:             r.Lastname,
		BirthDate:            birthDate,
		Address:              r.Address,
		Phone:                r.Phone,
		Email:                r.Email,
		BaseSalary:           r.BaseSalary,
		RoleID:               r.RoleID,
		Secret:               r.Secret,
	}, nil
}

// EditUserRequest is the account edit payload. ID selects the record;
// an empty Secret keeps the current one.
type EditUserRequest struct {
	ID string `json:"id"`
	CreateUserRequest
}

// ToModel converts the payload into the domain record.
func (r EditUserRequest) ToModel() (*models.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id must be a valid UUID")
	}
	u, err := r.CreateUserRequest.ToModel()
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

// LoginRequest is the credential payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func parseBirthDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "birth_date must use YYYY-MM-DD format")
	}
	return t, nil
}
