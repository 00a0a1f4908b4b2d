package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"academy/internal/users/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	SeedDemoUsers(s.ctx, s.store)
}

func (s *InMemoryUserStoreSuite) TestFindByID() {
	s.Run("returns a copy of the stored user", func() {
		u := &models.User{ID: id.NewUserID(), Name: "Ada", Email: "ada@example.com"}
		s.Require().NoError(s.store.Save(s.ctx, u))

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)

		found.Name = "mutated"
		again, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal("Ada", again.Name)
	})

	s.Run("missing user is ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestFindByIDs() {
	seeded, err := s.store.Search(s.ctx, "", 0)
	s.Require().NoError(err)
	s.Require().Len(seeded, 3)

	missing := id.NewUserID()
	found, err := s.store.FindByIDs(s.ctx, []id.UserID{seeded[0].ID, missing})
	s.Require().NoError(err)
	s.Len(found, 1)
	s.Contains(found, seeded[0].ID)
	s.NotContains(found, missing)
}

func (s *InMemoryUserStoreSuite) TestSearch() {
	s.Run("matches name case-insensitively", func() {
		users, err := s.store.Search(s.ctx, "GRACE", 0)
		s.Require().NoError(err)
		s.Require().Len(users, 1)
		s.Equal("Grace Hopper", users[0].Name)
	})

	s.Run("matches email", func() {
		users, err := s.store.Search(s.ctx, "alan@", 0)
		s.Require().NoError(err)
		s.Len(users, 1)
	})

	s.Run("orders by name and honours limit", func() {
		users, err := s.store.Search(s.ctx, "", 2)
		s.Require().NoError(err)
		s.Require().Len(users, 2)
		s.Equal("Ada Lovelace", users[0].Name)
		s.Equal("Alan Turing", users[1].Name)
	})
}
