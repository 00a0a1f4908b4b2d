// Package document renders a printable certificate.
package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"academy/internal/certificate/models"
)

const issuer = "Academy"

// Render draws a single landscape A4 page for the certificate.
func Render(view *models.View) ([]byte, error) {
	if view == nil || view.Certificate == nil {
		return nil, fmt.Errorf("render certificate: nothing to render")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate "+view.Code, true)
	pdf.SetAuthor(issuer, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w, h := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, w-20, h-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Arial", "B", 28)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 12, tr(orUnknown(view.HolderName)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 8, "has completed", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(orUnknown(view.SubCourseTitle)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("part of %s", orUnknown(view.CourseTitle))), "", 1, "C", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Issued on %s", view.IssueDate), "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate code: %s", view.Code), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating certificate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a rendered certificate.
func Filename(view *models.View) string {
	return fmt.Sprintf("certificate_%s.pdf", view.Code)
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
