package models

import (
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/validation"
)

// IssueRequest issues a certificate to a user for a sub-course.
type IssueRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	SubCourseID string `json:"sub_course_id" validate:"required,uuid"`
	IssueDate   string `json:"issue_date" validate:"required,datetime=2006-01-02"`

	userID      id.UserID
	subCourseID id.SubCourseID
	issueDate   id.Date
}

func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	var errs []error
	var err error
	if r.userID, err = id.ParseUserID(r.UserID); err != nil {
		errs = append(errs, dErrors.Validation("user_id", "must be a valid UUID"))
	}
	if r.subCourseID, err = id.ParseSubCourseID(r.SubCourseID); err != nil {
		errs = append(errs, dErrors.Validation("sub_course_id", "must be a valid UUID"))
	}
	if r.issueDate, err = id.ParseDate(r.IssueDate); err != nil {
		errs = append(errs, dErrors.Validation("issue_date", "must be a date formatted as YYYY-MM-DD"))
	}
	return validation.Merge(errs...)
}

// Parsed returns the typed fields. Call after Validate.
func (r *IssueRequest) Parsed() (id.UserID, id.SubCourseID, id.Date) {
	return r.userID, r.subCourseID, r.issueDate
}

// UpdateRequest reassigns a certificate. The code is never part of an edit.
type UpdateRequest struct {
	UserID      *string `json:"user_id" validate:"omitempty,uuid"`
	SubCourseID *string `json:"sub_course_id" validate:"omitempty,uuid"`
	IssueDate   *string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`

	userID      *id.UserID
	subCourseID *id.SubCourseID
	issueDate   *id.Date
}

func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	var errs []error
	if r.UserID != nil {
		v, err := id.ParseUserID(*r.UserID)
		if err != nil {
			errs = append(errs, dErrors.Validation("user_id", "must be a valid UUID"))
		}
		r.userID = &v
	}
	if r.SubCourseID != nil {
		v, err := id.ParseSubCourseID(*r.SubCourseID)
		if err != nil {
			errs = append(errs, dErrors.Validation("sub_course_id", "must be a valid UUID"))
		}
		r.subCourseID = &v
	}
	if r.IssueDate != nil {
		v, err := id.ParseDate(*r.IssueDate)
		if err != nil {
			errs = append(errs, dErrors.Validation("issue_date", "must be a date formatted as YYYY-MM-DD"))
		}
		r.issueDate = &v
	}
	return validation.Merge(errs...)
}

// Parsed returns the typed optional fields. Call after Validate.
func (r *UpdateRequest) Parsed() (*id.UserID, *id.SubCourseID, *id.Date) {
	return r.userID, r.subCourseID, r.issueDate
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateRequest) IsEmpty() bool {
	return r.UserID == nil && r.SubCourseID == nil && r.IssueDate == nil
}
