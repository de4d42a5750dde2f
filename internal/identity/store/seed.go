package store

import (
	"context"

	"userdir/internal/identity/models"
	idtypestore "userdir/internal/identity/store/idtype"
	rolestore "userdir/internal/identity/store/role"
)

// SeedReferenceData loads the identification types and roles every
// deployment starts with. Memory-backed deployments have no migrations, so
// the bootstrap path seeds these directly.
func SeedReferenceData(idTypes *idtypestore.InMemoryStore, roles *rolestore.InMemoryStore) {
	ctx := context.Background()

	for _, t := range []*models.IdType{
		{ID: 1, Name: "CC", Description: "National identity card"},
		{ID: 2, Name: "CE", Description: "Foreign resident card"},
		{ID: 3, Name: "PA", Description: "Passport"},
	} {
		_ = idTypes.Save(ctx, t)
	}

	for _, r := range []*models.Role{
		{ID: 1, Name: "ADMIN", Description: "Full directory administration"},
		{ID: 2, Name: "ADVISOR", Description: "Account management on behalf of clients"},
		{ID: 3, Name: "CLIENT", Description: "Self-service account access"},
	} {
		_ = roles.Save(ctx, r)
	}
}
