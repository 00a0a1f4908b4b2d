package handler

import (
	"time"

	"academy/internal/catalog/query"
	"academy/internal/certificate/models"
	"academy/internal/certificate/service"
	dErrors "academy/pkg/domain-errors"
)

type CertificateResponse struct {
	ID              string    `json:"id"`
	CertificateCode string    `json:"certificate_code"`
	IssueDate       string    `json:"issue_date"`
	UserID          string    `json:"user_id"`
	HolderName      string    `json:"holder_name"`
	HolderEmail     string    `json:"holder_email"`
	SubCourseID     string    `json:"sub_course_id"`
	SubCourseTitle  string    `json:"sub_course_title"`
	CourseID        string    `json:"course_id,omitempty"`
	CourseTitle     string    `json:"course_title"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toCertificateResponse(v *models.View) CertificateResponse {
	resp := CertificateResponse{
		ID:              v.ID.String(),
		CertificateCode: v.Code,
		IssueDate:       v.IssueDate.String(),
		UserID:          v.UserID.String(),
		HolderName:      v.HolderName,
		HolderEmail:     v.HolderEmail,
		SubCourseID:     v.SubCourseID.String(),
		SubCourseTitle:  v.SubCourseTitle,
		CourseTitle:     v.CourseTitle,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	if !v.CourseID.IsNil() {
		resp.CourseID = v.CourseID.String()
	}
	return resp
}

type CodeStatusResponse struct {
	CertificateCode string `json:"certificate_code"`
	Status          string `json:"status"`
	WellFormed      bool   `json:"well_formed"`
	CertificateID   string `json:"certificate_id,omitempty"`
}

func toCodeStatusResponse(s *models.CodeStatus) CodeStatusResponse {
	resp := CodeStatusResponse{
		CertificateCode: s.Code,
		Status:          string(s.State),
		WellFormed:      s.WellFormed,
	}
	if !s.CertificateID.IsNil() {
		resp.CertificateID = s.CertificateID.String()
	}
	return resp
}

type PageMeta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

type ListResponse struct {
	Data []CertificateResponse `json:"data"`
	Meta PageMeta              `json:"meta"`
}

func toListResponse(p query.Page[*models.View]) ListResponse {
	mapped := query.MapPage(p, toCertificateResponse)
	return ListResponse{
		Data: mapped.Items,
		Meta: PageMeta{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			Total:       p.Total,
			PerPage:     p.PageSize,
		},
	}
}

type ImportFailureResponse struct {
	Line   int                 `json:"line"`
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type ImportResponse struct {
	Issued []CertificateResponse   `json:"issued"`
	Failed []ImportFailureResponse `json:"failed"`
}

func toImportResponse(result *service.ImportResult) ImportResponse {
	resp := ImportResponse{
		Issued: make([]CertificateResponse, 0, len(result.Issued)),
		Failed: make([]ImportFailureResponse, 0, len(result.Failed)),
	}
	for _, v := range result.Issued {
		resp.Issued = append(resp.Issued, toCertificateResponse(v))
	}
	for _, f := range result.Failed {
		msg := f.Err.Error()
		if de, ok := dErrors.As(f.Err); ok {
			msg = de.Message
		}
		resp.Failed = append(resp.Failed, ImportFailureResponse{
			Line:   f.Line,
			Error:  msg,
			Errors: dErrors.FieldErrors(f.Err),
		})
	}
	return resp
}
