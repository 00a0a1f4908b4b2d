package domain

import (
	"bytes"
	"strings"

	"github.com/google/uuid"

	dErrors "academy/pkg/domain-errors"
)

// Typed identifiers keep course, sub-course, certificate and user IDs from
// being passed where another kind is expected.
type (
	CourseID      uuid.UUID
	SubCourseID   uuid.UUID
	CertificateID uuid.UUID
	UserID        uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

func unmarshalUUID(kind string, text []byte) (uuid.UUID, error) {
	return parseUUID(kind, strings.TrimSpace(string(text)))
}

// NewCourseID returns a fresh random CourseID.
func NewCourseID() CourseID { return CourseID(uuid.New()) }

// ParseCourseID validates s as a non-nil UUID.
func ParseCourseID(s string) (CourseID, error) {
	u, err := parseUUID("course id", s)
	return CourseID(u), err
}

func (id CourseID) String() string { return uuid.UUID(id).String() }
func (id CourseID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Compare orders IDs by their byte representation, matching Postgres uuid ordering.
func (id CourseID) Compare(other CourseID) int { return bytes.Compare(id[:], other[:]) }

func (id CourseID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CourseID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID("course id", text)
	if err != nil {
		return err
	}
	*id = CourseID(u)
	return nil
}

// NewSubCourseID returns a fresh random SubCourseID.
func NewSubCourseID() SubCourseID { return SubCourseID(uuid.New()) }

// ParseSubCourseID validates s as a non-nil UUID.
func ParseSubCourseID(s string) (SubCourseID, error) {
	u, err := parseUUID("sub-course id", s)
	return SubCourseID(u), err
}

func (id SubCourseID) String() string                { return uuid.UUID(id).String() }
func (id SubCourseID) IsNil() bool                   { return uuid.UUID(id) == uuid.Nil }
func (id SubCourseID) Compare(other SubCourseID) int { return bytes.Compare(id[:], other[:]) }
func (id SubCourseID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *SubCourseID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID("sub-course id", text)
	if err != nil {
		return err
	}
	*id = SubCourseID(u)
	return nil
}

// NewCertificateID returns a fresh random CertificateID.
func NewCertificateID() CertificateID { return CertificateID(uuid.New()) }

// ParseCertificateID validates s as a non-nil UUID.
func ParseCertificateID(s string) (CertificateID, error) {
	u, err := parseUUID("certificate id", s)
	return CertificateID(u), err
}

func (id CertificateID) String() string                  { return uuid.UUID(id).String() }
func (id CertificateID) IsNil() bool                     { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) Compare(other CertificateID) int { return bytes.Compare(id[:], other[:]) }
func (id CertificateID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *CertificateID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID("certificate id", text)
	if err != nil {
		return err
	}
	*id = CertificateID(u)
	return nil
}

// NewUserID returns a fresh random UserID. Users are owned by the auth
// collaborator; this exists for seeding and tests.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID validates s as a non-nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func (id UserID) String() string               { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool                  { return uuid.UUID(id) == uuid.Nil }
func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	u, err := unmarshalUUID("user id", text)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}
