// Package store persists certificates and the set of codes that may never
// be issued again.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"academy/internal/certificate/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in process. A code is unavailable while a
// certificate holds it and forever after that certificate is deleted or
// re-coded.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.CertificateID]*models.Certificate
	byCode  map[string]id.CertificateID
	retired map[string]struct{}
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.CertificateID]*models.Certificate),
		byCode:  make(map[string]id.CertificateID),
		retired: make(map[string]struct{}),
	}
}

// Create stores c. A code that is in use or retired reports ErrAlreadyUsed.
func (s *InMemoryStore) Create(_ context.Context, c *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[c.ID]; exists {
		return fmt.Errorf("certificate %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	if s.codeTakenLocked(c.Code) {
		return codeTaken()
	}
	s.byID[c.ID] = c.Clone()
	s.byCode[c.Code] = c.ID
	return nil
}

// Update replaces the holder, sub-course and issue date. The stored code is
// kept regardless of c.Code.
func (s *InMemoryStore) Update(_ context.Context, c *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[c.ID]
	if !ok {
		return notFound()
	}
	updated := c.Clone()
	updated.Code = existing.Code
	s.byID[c.ID] = updated
	return nil
}

// ReplaceCode gives the certificate newCode and retires the old one.
func (s *InMemoryStore) ReplaceCode(_ context.Context, certID id.CertificateID, newCode string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[certID]
	if !ok {
		return "", notFound()
	}
	if s.codeTakenLocked(newCode) {
		return "", codeTaken()
	}
	old := c.Code
	delete(s.byCode, old)
	s.retired[old] = struct{}{}
	c.Code = newCode
	c.UpdatedAt = now
	s.byCode[newCode] = certID
	return old, nil
}

// Delete removes the certificate and retires its code.
func (s *InMemoryStore) Delete(_ context.Context, certID id.CertificateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[certID]
	if !ok {
		return notFound()
	}
	s.removeLocked(c)
	return nil
}

// DeleteBySubCourses removes every certificate issued for the given
// sub-courses, retiring their codes.
func (s *InMemoryStore) DeleteBySubCourses(_ context.Context, ids []id.SubCourseID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets := make(map[id.SubCourseID]struct{}, len(ids))
	for _, subID := range ids {
		targets[subID] = struct{}{}
	}
	removed := 0
	for _, c := range s.byID {
		if _, ok := targets[c.SubCourseID]; ok {
			s.removeLocked(c)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[certID]
	if !ok {
		return nil, notFound()
	}
	return c.Clone(), nil
}

// FindByCode is an exact, case-sensitive lookup.
func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certID, ok := s.byCode[code]
	if !ok {
		return nil, notFound()
	}
	return s.byID[certID].Clone(), nil
}

// List returns all certificates, newest issue date first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Certificate, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, models.CompareByIssueDate)
	return out, nil
}

// IsRetired reports whether code belonged to a deleted or re-coded certificate.
func (s *InMemoryStore) IsRetired(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.retired[code]
	return ok, nil
}

func (s *InMemoryStore) codeTakenLocked(code string) bool {
	if _, ok := s.byCode[code]; ok {
		return true
	}
	_, ok := s.retired[code]
	return ok
}

func (s *InMemoryStore) removeLocked(c *models.Certificate) {
	delete(s.byID, c.ID)
	delete(s.byCode, c.Code)
	s.retired[c.Code] = struct{}{}
}

func notFound() error {
	return fmt.Errorf("certificate: %w", sentinel.ErrNotFound)
}

func codeTaken() error {
	return fmt.Errorf("certificate code: %w", sentinel.ErrAlreadyUsed)
}
