package out

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
)

const (
	summarySheet = "Summary"
	rosterSheet  = "Roster"
	weekSheet    = "Week"
)

type ExcelWriter struct{}

func NewExcelWriter() reportout.Writer {
	return ExcelWriter{}
}

func (ExcelWriter) Format() domain.Format { return domain.FormatExcel }

func (ExcelWriter) Extension() string { return "xlsx" }

func (ExcelWriter) Write(w io.Writer, kind domain.Kind, snapshot domain.Snapshot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDE4F7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	summary := [][2]any{
		{"Report", kind.Title()},
		{"Class", snapshot.ClassLabel},
		{"Subject", snapshot.Subject},
		{"Instructor", snapshot.Instructor},
		{"Room", snapshot.Room},
		{"Session start", snapshot.StartTime.Format("2006-01-02 15:04")},
		{"Present", snapshot.Present},
		{"Absent", snapshot.Absent},
		{"Enrolled", snapshot.Total},
		{"Attendance rate (%)", snapshot.RatePercent},
		{"Goal (%)", snapshot.GoalPercent},
		{"Goal met", snapshot.GoalMet},
		{"Class progress (%)", fmt.Sprintf("%.0f", snapshot.ProgressPercent)},
		{"Class status", snapshot.ClassStatus},
	}
	for i, pair := range summary {
		row := i + 1
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), pair[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), pair[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return err
	}

	if kind == domain.KindWeeklySummary {
		if err := writeWeekSheet(f, snapshot.Week, headerStyle); err != nil {
			return err
		}
	} else if err := writeRosterSheet(f, kind, snapshot, headerStyle); err != nil {
		return err
	}
	return f.Write(w)
}

func writeRosterSheet(f *excelize.File, kind domain.Kind, snapshot domain.Snapshot, headerStyle int) error {
	if _, err := f.NewSheet(rosterSheet); err != nil {
		return err
	}
	headers := []string{"Student", "Status", "Scanned at"}
	if kind == domain.KindIndividual {
		headers = append(headers, "Student ID")
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(rosterSheet, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(rosterSheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, r := range snapshot.Rows {
		row := i + 2
		values := []any{r.DisplayName, r.Status, ""}
		if r.ScannedAt != nil {
			values[2] = r.ScannedAt.Format("15:04:05")
		}
		if kind == domain.KindIndividual {
			values = append(values, r.StudentID)
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(rosterSheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(rosterSheet, "A", "D", 22)
}

func writeWeekSheet(f *excelize.File, week domain.WeeklyOverview, headerStyle int) error {
	if _, err := f.NewSheet(weekSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(weekSheet, "A1", &[]any{"Day", "Date", "Sessions", "Present", "Enrolled", "Rate (%)"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(weekSheet, "A1", "F1", headerStyle); err != nil {
		return err
	}
	for i, d := range week.Days {
		var rate any
		if d.HasSessions() {
			rate = d.RatePercent
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{d.Day.String(), d.Date.Format("2006-01-02"), d.Sessions, d.Present, d.Enrolled, rate}
		if err := f.SetSheetRow(weekSheet, cell, &row); err != nil {
			return err
		}
	}
	avgRow := len(week.Days) + 3
	if err := f.SetCellValue(weekSheet, fmt.Sprintf("A%d", avgRow), "Weekly average (%)"); err != nil {
		return err
	}
	if err := f.SetCellStyle(weekSheet, fmt.Sprintf("A%d", avgRow), fmt.Sprintf("A%d", avgRow), headerStyle); err != nil {
		return err
	}
	if err := f.SetCellValue(weekSheet, fmt.Sprintf("F%d", avgRow), week.AveragePercent); err != nil {
		return err
	}
	return f.SetColWidth(weekSheet, "A", "F", 16)
}
