package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/xuri/excelize/v2"

	"attendapi/internal/model"
)

const (
	sheetSummary = "summary"
	sheetRecords = "records"
)

// Format selects the file type of an exported report.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
)

// ErrUnknownFormat is returned by ParseFormat for anything but xlsx or docx.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat maps a query value to a Format. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}
	return "", ErrUnknownFormat
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders the report in the requested format.
func Write(w io.Writer, format Format, course *model.Course, stats *model.CourseStats, records []ReportRecord, loc *time.Location) error {
	switch format {
	case FormatDOCX:
		return WriteSignInSheet(w, course, stats, records, loc)
	case FormatXLSX, "":
		return WriteReport(w, course, stats, records, loc)
	}
	return ErrUnknownFormat
}

// ReportRecord is one attendance line of an exported report.
type ReportRecord struct {
	StudentCode string
	StudentName string
	Date        string
	Status      string
	CheckedAt   time.Time
}

// WriteReport writes a course attendance report with a per-day summary sheet
// and a per-record sheet. Absent students appear in records with an empty check-in time.
func WriteReport(w io.Writer, course *model.Course, stats *model.CourseStats, records []ReportRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"course", course.Name},
		{"class", course.ClassCode},
		{"teacher", course.TeacherCode},
		{},
		{"date", "expected", "present", "late", "absent", "rate"},
	}
	for _, d := range stats.Days {
		summary = append(summary, []interface{}{d.Date, d.Expected, d.Present, d.Late, d.Absent, d.Rate})
	}
	summary = append(summary, []interface{}{"total", stats.Expected, stats.Present, stats.Late, stats.Absent, stats.Rate})
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetRecords); err != nil {
		return err
	}
	rows := [][]interface{}{{"date", "student number", "name", "status", "checked at"}}
	for _, r := range records {
		checked := ""
		if !r.CheckedAt.IsZero() {
			checked = r.CheckedAt.In(loc).Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []interface{}{r.Date, r.StudentCode, r.StudentName, r.Status, checked})
	}
	if err := writeRows(f, sheetRecords, rows); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, addr, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

var signInHeader = []string{"date", "student number", "name", "status", "checked at", "signature"}

// WriteSignInSheet writes a printable Word sign-in sheet: a title, the course
// totals and one table row per record with an empty signature column.
func WriteSignInSheet(w io.Writer, course *model.Course, stats *model.CourseStats, records []ReportRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Justification("center").AddText(course.Name + " sign-in sheet").Bold().Size("32")
	doc.AddParagraph().AddText(fmt.Sprintf("class: %s\tteacher: %s", course.ClassCode, course.TeacherCode))
	doc.AddParagraph().AddText(fmt.Sprintf("expected %d, present %d, late %d, absent %d, rate %.1f%%",
		stats.Expected, stats.Present, stats.Late, stats.Absent, stats.Rate*100))

	tbl := doc.AddTable(len(records)+1, len(signInHeader), 0, nil)
	for i, h := range signInHeader {
		tbl.TableRows[0].TableCells[i].AddParagraph().AddText(h).Bold()
	}
	for i, r := range records {
		checked := ""
		if !r.CheckedAt.IsZero() {
			checked = r.CheckedAt.In(loc).Format("15:04:05")
		}
		cells := tbl.TableRows[i+1].TableCells
		for j, v := range []string{r.Date, r.StudentCode, r.StudentName, r.Status, checked, ""} {
			cells[j].AddParagraph().AddText(v)
		}
	}
	doc.WithA4Page()

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
