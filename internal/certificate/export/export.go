// Package export converts certificates to and from spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"academy/internal/certificate/models"
)

const sheetName = "Certificates"

// MaxImportRows bounds a single bulk issuance upload.
const MaxImportRows = 1000

var exportHeader = []string{"Code", "Holder", "Email", "Course", "Sub-course", "Issue date", "Certificate ID"}

// Write renders views as a single-sheet XLSX workbook.
func Write(views []*models.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, v := range views {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{v.Code, v.HolderName, v.HolderEmail, v.CourseTitle, v.SubCourseTitle, v.IssueDate.String(), v.ID.String()}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "E", 28)
	_ = f.SetColWidth(sheetName, "F", "F", 12)
	_ = f.SetColWidth(sheetName, "G", "G", 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Row is one issuance line of an uploaded workbook. Line is the 1-based
// spreadsheet row, for error reporting.
type Row struct {
	Line    int
	Request *models.IssueRequest
}

// ParseIssueRows reads the first sheet of an XLSX upload. Columns are
// user_id, sub_course_id, issue_date; the first row is a header. Blank rows
// are skipped.
func ParseIssueRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []Row
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		cells := padded(row, 3)
		if cells[0] == "" && cells[1] == "" && cells[2] == "" {
			continue
		}
		if len(out) == MaxImportRows {
			return nil, fmt.Errorf("workbook has more than %d rows", MaxImportRows)
		}
		out = append(out, Row{
			Line: i + 1,
			Request: &models.IssueRequest{
				UserID:      cells[0],
				SubCourseID: cells[1],
				IssueDate:   cells[2],
			},
		})
	}
	return out, nil
}

// Template returns an empty upload workbook with the expected header.
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	header := []string{"user_id", "sub_course_id", "issue_date"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func padded(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
