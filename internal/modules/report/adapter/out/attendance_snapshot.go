package out

import (
	"context"

	attendancedto "faceclass/internal/modules/attendance/dto"
	attendancein "faceclass/internal/modules/attendance/port/in"
	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
)

// AttendanceSnapshotSource reads the live roster for scheduled reports.
type AttendanceSnapshotSource struct {
	attendance attendancein.Usecase
}

func NewAttendanceSnapshotSource(attendance attendancein.Usecase) reportout.SnapshotSource {
	return AttendanceSnapshotSource{attendance: attendance}
}

func (s AttendanceSnapshotSource) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	roster, err := s.attendance.Roster(ctx, attendancedto.RosterQuery{})
	if err != nil {
		return domain.Snapshot{}, err
	}
	rows := make([]domain.Row, 0, len(roster.Records))
	for _, r := range roster.Records {
		rows = append(rows, domain.Row{StudentID: r.StudentID, DisplayName: r.DisplayName, Status: r.Status, ScannedAt: r.ScanTimestamp})
	}
	m := roster.Metrics
	return domain.Snapshot{
		SessionID:              roster.Session.ID,
		ClassLabel:             roster.Session.ClassLabel,
		Subject:                roster.Session.Subject,
		Instructor:             roster.Session.Instructor,
		Room:                   roster.Session.Room,
		StartTime:              roster.Session.StartTime,
		PlannedDurationMinutes: roster.Session.PlannedDurationMinutes,
		Rows:                   rows,
		Present:                m.PresentCount,
		Absent:                 m.AbsentCount,
		Total:                  m.TotalEnrolled,
		RatePercent:            m.AttendanceRatePercent,
		ProgressPercent:        m.ClassProgressPercent,
		ElapsedMinutes:         m.ElapsedMinutes,
		ClassStatus:            m.ClassStatus,
		GoalPercent:            m.AttendanceGoalPercent,
		GoalMet:                m.AttendanceGoalMet,
		At:                     m.At,
	}, nil
}
