package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"userdir/internal/identity/models"
	"userdir/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(email string, idNumber int64) *models.User {
	return &models.User{
		IdentificationNumber: idNumber,
		IDTypeID:             1,
		Name:                 "Test",
		Lastname:             "User",
		Email:                email,
		BaseSalary:           1000000,
		RoleID:               3,
		Secret:               "$2a$04$hash",
	}
}

// TestCreationAndLookups verifies the store assigns ids and serves the
// lookup paths used by login and account management.
func (s *UserStoreSuite) TestCreationAndLookups() {
	s.Run("save assigns an id and finds by it", func() {
		u := s.newUser("ana@example.com", 1001)
		s.Require().NoError(s.store.Save(s.ctx, u))
		s.NotEqual(uuid.Nil, u.ID)

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("ana@example.com", found.Email)
	})

	s.Run("finds by email and identification", func() {
		u := s.newUser("bob@example.com", 1002)
		s.Require().NoError(s.store.Save(s.ctx, u))

		byEmail, err := s.store.FindByEmail(s.ctx, "bob@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, byEmail.ID)

		byIdent, err := s.store.FindByIdentification(s.ctx, 1002)
		s.Require().NoError(err)
		s.Equal(u.ID, byIdent.ID)
	})

	s.Run("returns ErrNotFound for unknown keys", func() {
		_, err := s.store.FindByID(s.ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByIdentification(s.ctx, 404404)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reads return copies", func() {
		u := s.newUser("carla@example.com", 1003)
		s.Require().NoError(s.store.Save(s.ctx, u))

		found, err := s.store.FindByEmail(s.ctx, "carla@example.com")
		s.Require().NoError(err)
		found.Name = "Mutated"

		again, err := s.store.FindByEmail(s.ctx, "carla@example.com")
		s.Require().NoError(err)
		s.Equal("Test", again.Name)
	})
}

// TestConflictQuery verifies the collision reporting used by create
// validation.
func (s *UserStoreSuite) TestConflictQuery() {
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("ana@example.com", 1001)))
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("bob@example.com", 1002)))

	s.Run("matches on email or identification", func() {
		hits, err := s.store.FindConflicts(s.ctx, "ana@example.com", 1002)
		s.Require().NoError(err)
		s.Require().Len(hits, 2)
		s.Equal(int64(1001), hits[0].IdentificationNumber)
		s.Equal(int64(1002), hits[1].IdentificationNumber)
	})

	s.Run("no collision yields an empty result", func() {
		hits, err := s.store.FindConflicts(s.ctx, "free@example.com", 9999)
		s.Require().NoError(err)
		s.Empty(hits)
	})
}

// TestUpdatesAndDeletion verifies mutation paths.
func (s *UserStoreSuite) TestUpdatesAndDeletion() {
	s.Run("update persists changes", func() {
		u := s.newUser("dan@example.com", 1004)
		s.Require().NoError(s.store.Save(s.ctx, u))

		u.Address = "Calle 100"
		s.Require().NoError(s.store.Update(s.ctx, u))

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("Calle 100", found.Address)
	})

	s.Run("update of an unknown id is ErrNotFound", func() {
		ghost := s.newUser("ghost@example.com", 1005)
		ghost.ID = uuid.New()
		s.Require().ErrorIs(s.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})

	s.Run("delete removes by identification number", func() {
		u := s.newUser("eve@example.com", 1006)
		s.Require().NoError(s.store.Save(s.ctx, u))

		s.Require().NoError(s.store.Delete(s.ctx, 1006))
		_, err := s.store.FindByIdentification(s.ctx, 1006)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().ErrorIs(s.store.Delete(s.ctx, 1006), sentinel.ErrNotFound)
	})
}

// TestList verifies deterministic ordering.
func (s *UserStoreSuite) TestList() {
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("b@example.com", 20)))
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("a@example.com", 10)))

	users, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(int64(10), users[0].IdentificationNumber)
	s.Equal(int64(20), users[1].IdentificationNumber)
}
