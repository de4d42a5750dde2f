package service

import (
	"fmt"
	"regexp"
	"strings"

	"userdir/internal/identity/models"
	dErrors "userdir/pkg/domain-errors"
)

// emailPattern accepts local-part@domain.tld: letters, digits and _+&*-
// in dot-separated local labels, and a 2-7 letter top-level label.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_+&*-]+(\.[A-Za-z0-9_+&*-]+)*@([A-Za-z0-9-]+\.)+[A-Za-z]{2,7}$`)

// SalaryBounds is the configured inclusive base salary range.
type SalaryBounds struct {
	Min float64
	Max float64
}

// DefaultSalaryBounds matches the production configuration.
func DefaultSalaryBounds() SalaryBounds {
	return SalaryBounds{Min: 0, Max: 15_000_000}
}

// validateFields applies the field-level rules in order; the first failure
// wins. requireSecret is false on the edit path, where an absent secret
// means "keep the current one".
func (s *Service) validateFields(u *models.User, requireSecret bool) error {
	if u.IdentificationNumber == 0 {
		return dErrors.New(dErrors.CodeValidation, "identification number is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(u.Lastname) == "" {
		return dErrors.New(dErrors.CodeValidation, "lastname is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return dErrors.New(dErrors.CodeValidation, "email format is invalid")
	}
	if u.BaseSalary < s.salaryBounds.Min || u.BaseSalary > s.salaryBounds.Max {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("base salary must be between %.0f and %.0f", s.salaryBounds.Min, s.salaryBounds.Max))
	}
	if requireSecret && strings.TrimSpace(u.Secret) == "" {
		return dErrors.New(dErrors.CodeValidation, "secret is required")
	}
	return nil
}

// conflictError reports which unique fields collide between the submitted
// record and the stored ones. A record colliding on both fields yields a
// single combined message.
func conflictError(submitted *models.User, existing []*models.User) error {
	var email, idNumber bool
	for _, other := range existing {
		if submitted.ID != other.ID {
			email = email || submitted.SharesEmail(other)
			idNumber = idNumber || submitted.SharesIdentification(other)
		}
	}

	switch {
	case email && idNumber:
		return dErrors.New(dErrors.CodeConflict, "email and identification number already registered")
	case email:
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	case idNumber:
		return dErrors.New(dErrors.CodeConflict, "identification number already registered")
	}
	return nil
}

// immutabilityError rejects edits that would move email or identification
// number away from the stored record's values.
func immutabilityError(submitted, stored *models.User) error {
	emailChanged := submitted.Email != stored.Email
	idChanged := submitted.IdentificationNumber != stored.IdentificationNumber

	switch {
	case emailChanged && idChanged:
		return dErrors.New(dErrors.CodeValidation, "cannot change the registered email and identification number")
	case emailChanged:
		return dErrors.New(dErrors.CodeValidation, "cannot change the registered email")
	case idChanged:
		return dErrors.New(dErrors.CodeValidation, "cannot change the registered identification number")
	}
	return nil
}
