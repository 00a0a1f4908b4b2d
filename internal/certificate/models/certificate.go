package models

import (
	"time"

	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

// Certificate records that a user completed a sub-course.
//
// Invariants:
//   - Code is globally unique for the lifetime of the data, including after
//     deletion; an edit never changes it
//   - IssueDate is a calendar date, not an instant
type Certificate struct {
	ID          id.CertificateID `json:"id"`
	UserID      id.UserID        `json:"user_id"`
	SubCourseID id.SubCourseID   `json:"sub_course_id"`
	Code        string           `json:"certificate_code"`
	IssueDate   id.Date          `json:"issue_date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewCertificate(certID id.CertificateID, userID id.UserID, subID id.SubCourseID, code string, issueDate id.Date, now time.Time) (*Certificate, error) {
	c := &Certificate{
		ID:          certID,
		UserID:      userID,
		SubCourseID: subID,
		Code:        code,
		IssueDate:   issueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Certificate) Check() error {
	switch {
	case c.ID.IsNil():
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate id is required")
	case c.UserID.IsNil():
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate must reference a user")
	case c.SubCourseID.IsNil():
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate must reference a sub-course")
	case c.Code == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate code is required")
	case c.IssueDate.IsZero():
		return dErrors.New(dErrors.CodeInvariantViolation, "issue date is required")
	}
	return nil
}

func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// CompareByIssueDate orders newest issue date first, then by id.
func CompareByIssueDate(a, b *Certificate) int {
	if a.IssueDate != b.IssueDate {
		if b.IssueDate.Before(a.IssueDate) {
			return -1
		}
		return 1
	}
	return a.ID.Compare(b.ID)
}

// View is a certificate with its holder and catalog titles resolved at read
// time. Missing references leave the names empty.
type View struct {
	*Certificate
	HolderName     string
	HolderEmail    string
	CourseID       id.CourseID
	CourseTitle    string
	SubCourseTitle string
}

// CodeState classifies a certificate code.
type CodeState string

const (
	CodeActive  CodeState = "active"
	CodeRetired CodeState = "retired"
	CodeUnused  CodeState = "unused"
)

// CodeStatus answers whether a code belongs to a live certificate, was
// vacated by a delete or regeneration, or was never issued.
type CodeStatus struct {
	Code          string
	State         CodeState
	WellFormed    bool
	CertificateID id.CertificateID
}
