// Package roster reads roster workbooks for bulk import and writes attendance reports.
package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names recognised in an import workbook.
const (
	SheetClasses  = "classes"
	SheetStudents = "students"
	SheetTeachers = "teachers"
	SheetCourses  = "courses"
)

// ClassRow is a line of the classes sheet: code, name.
type ClassRow struct {
	Row  int
	Code string
	Name string
}

// StudentRow is a line of the students sheet: student number, name, class code.
type StudentRow struct {
	Row       int
	Username  string
	Name      string
	ClassCode string
}

// TeacherRow is a line of the teachers sheet: teacher code, name.
type TeacherRow struct {
	Row      int
	Username string
	Name     string
}

// CourseRow is a line of the courses sheet: name, teacher code, class code, schedule text.
type CourseRow struct {
	Row          int
	Name         string
	TeacherCode  string
	ClassCode    string
	ScheduleText string
}

// RowError reports a skipped line. Row is 1-based as shown by spreadsheet software.
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Workbook is the parsed content of an import file.
type Workbook struct {
	Classes  []ClassRow
	Students []StudentRow
	Teachers []TeacherRow
	Courses  []CourseRow
	Errors   []RowError
}

// Read parses an .xlsx roster. The first row of every sheet is a header.
// A workbook without any recognised sheet name is read as a students list from its first sheet.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}

	wb := &Workbook{}
	found := false
	for _, kind := range []string{SheetClasses, SheetStudents, SheetTeachers, SheetCourses} {
		name, ok := sheets[kind]
		if !ok {
			continue
		}
		found = true
		if err := wb.readSheet(f, name, kind); err != nil {
			return nil, err
		}
	}
	if !found {
		list := f.GetSheetList()
		if len(list) == 0 {
			return wb, nil
		}
		if err := wb.readSheet(f, list[0], SheetStudents); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

func (wb *Workbook) readSheet(f *excelize.File, name, kind string) error {
	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", name, err)
	}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		line := i + 1
		switch kind {
		case SheetClasses:
			c := ClassRow{Row: line, Code: cell(row, 0), Name: cell(row, 1)}
			if c.Code == "" {
				wb.fail(kind, line, "class code is required")
				continue
			}
			if c.Name == "" {
				c.Name = c.Code
			}
			wb.Classes = append(wb.Classes, c)
		case SheetStudents:
			s := StudentRow{Row: line, Username: cell(row, 0), Name: cell(row, 1), ClassCode: cell(row, 2)}
			if s.Username == "" || s.Name == "" {
				wb.fail(kind, line, "student number and name are required")
				continue
			}
			wb.Students = append(wb.Students, s)
		case SheetTeachers:
			t := TeacherRow{Row: line, Username: cell(row, 0), Name: cell(row, 1)}
			if t.Username == "" || t.Name == "" {
				wb.fail(kind, line, "teacher code and name are required")
				continue
			}
			wb.Teachers = append(wb.Teachers, t)
		case SheetCourses:
			c := CourseRow{Row: line, Name: cell(row, 0), TeacherCode: cell(row, 1), ClassCode: cell(row, 2), ScheduleText: cell(row, 3)}
			if c.Name == "" || c.TeacherCode == "" || c.ClassCode == "" {
				wb.fail(kind, line, "course name, teacher code and class code are required")
				continue
			}
			wb.Courses = append(wb.Courses, c)
		}
	}
	return nil
}

func (wb *Workbook) fail(sheet string, row int, msg string) {
	wb.Errors = append(wb.Errors, RowError{Sheet: sheet, Row: row, Message: msg})
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
