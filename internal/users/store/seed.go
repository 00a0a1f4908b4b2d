package store

import (
	"context"

	"github.com/google/uuid"

	"academy/internal/users/models"
	id "academy/pkg/domain"
)

// Fixed ids so demo certificates survive restarts of the in-memory directory.
var demoUsers = []struct {
	id    string
	name  string
	email string
}{
	{"6f1c2a8e-4d0b-4c6e-9a57-2b1f0c9d3e11", "Ada Lovelace", "ada@academy.example"},
	{"0b7e9d44-58a3-4f4c-8e2d-7c6a1f2b9d22", "Grace Hopper", "grace@academy.example"},
	{"9a3d5c71-2e6f-4b8a-b1c9-4d0e7f8a6c33", "Alan Turing", "alan@academy.example"},
}

// SeedDemoUsers fills an in-memory directory for local runs.
func SeedDemoUsers(ctx context.Context, s *InMemoryUserStore) []*models.User {
	out := make([]*models.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		u := &models.User{ID: id.UserID(uuid.MustParse(d.id)), Name: d.name, Email: d.email}
		_ = s.Save(ctx, u)
		out = append(out, u)
	}
	return out
}
