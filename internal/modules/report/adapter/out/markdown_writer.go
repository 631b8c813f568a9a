package out

import (
	"fmt"
	"io"
	"strings"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
	"faceclass/internal/platform/markdown"
)

type MarkdownWriter struct{}

func NewMarkdownWriter() reportout.Writer {
	return MarkdownWriter{}
}

func (MarkdownWriter) Format() domain.Format { return domain.FormatMarkdown }

func (MarkdownWriter) Extension() string { return "md" }

func (MarkdownWriter) Write(w io.Writer, kind domain.Kind, snapshot domain.Snapshot) error {
	doc := markdown.Document{
		Meta: map[string]any{
			"type":            string(kind),
			"class":           snapshot.ClassLabel,
			"session_id":      snapshot.SessionID,
			"generated_at":    snapshot.At.Format("2006-01-02T15:04:05Z07:00"),
			"present":         snapshot.Present,
			"absent":          snapshot.Absent,
			"enrolled":        snapshot.Total,
			"attendance_rate": snapshot.RatePercent,
			"goal_met":        snapshot.GoalMet,
		},
		Body: markdownBody(kind, snapshot),
	}
	if kind == domain.KindWeeklySummary {
		doc.Meta["week_start"] = snapshot.Week.WeekStart.Format("2006-01-02")
		doc.Meta["weekly_average"] = snapshot.Week.AveragePercent
	}
	rendered, err := doc.Render()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func markdownBody(kind domain.Kind, s domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", kind.Title(), s.ClassLabel)
	if s.Subject != "" {
		fmt.Fprintf(&b, "%s, %s, %s\n\n", s.Subject, s.Instructor, s.Room)
	}
	fmt.Fprintf(&b, "- Present: %d of %d (%d%%)\n", s.Present, s.Total, s.RatePercent)
	fmt.Fprintf(&b, "- Goal: %.0f%% (%s)\n", s.GoalPercent, metLabel(s.GoalMet))
	fmt.Fprintf(&b, "- Class progress: %.0f%% (%s)\n", s.ProgressPercent, s.ClassStatus)
	if kind == domain.KindWeeklySummary {
		writeWeekSection(&b, s.Week)
		return b.String()
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		at := "-"
		if r.ScannedAt != nil {
			at = r.ScannedAt.Format("15:04")
		}
		row := []string{r.DisplayName, r.Status, at}
		if kind == domain.KindIndividual {
			row = append(row, r.StudentID)
		}
		rows = append(rows, row)
	}
	header := []string{"Student", "Status", "Scanned at"}
	if kind == domain.KindIndividual {
		header = append(header, "Student ID")
	}
	b.WriteString("\n## Roster\n\n")
	b.WriteString(markdown.Table(header, rows))
	return b.String()
}

func writeWeekSection(b *strings.Builder, week domain.WeeklyOverview) {
	fmt.Fprintf(b, "\n## Week of %s\n\n", week.WeekStart.Format("2006-01-02"))
	rows := make([][]string, 0, len(week.Days))
	for _, d := range week.Days {
		rate := "-"
		if d.HasSessions() {
			rate = fmt.Sprintf("%d%%", d.RatePercent)
		}
		rows = append(rows, []string{
			d.Date.Format("Mon 02/01"),
			fmt.Sprint(d.Sessions),
			fmt.Sprintf("%d/%d", d.Present, d.Enrolled),
			rate,
		})
	}
	b.WriteString(markdown.Table([]string{"Day", "Sessions", "Present", "Rate"}, rows))
	fmt.Fprintf(b, "\nWeekly average: %d%%\n", week.AveragePercent)
}

func metLabel(met bool) string {
	if met {
		return "met"
	}
	return "not met"
}
