package usecase

import (
	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/modules/attendance/dto"
)

func toRecordDTO(r domain.AttendanceRecord) dto.Record {
	out := dto.Record{
		StudentID:   r.StudentID,
		DisplayName: r.DisplayName,
		Status:      string(r.Status),
		AvatarTag:   r.AvatarTag,
	}
	if r.ScanTimestamp != nil {
		ts := *r.ScanTimestamp
		out.ScanTimestamp = &ts
	}
	return out
}

func toMetricsDTO(m domain.MetricsSnapshot) dto.Metrics {
	return dto.Metrics{
		PresentCount:          m.PresentCount,
		AbsentCount:           m.AbsentCount,
		TotalEnrolled:         m.TotalEnrolled,
		AttendanceRatePercent: m.AttendanceRatePercent,
		ClassProgressPercent:  m.ClassProgressPercent,
		ElapsedMinutes:        m.ElapsedMinutes,
		ClassStatus:           string(m.ClassStatus),
		AttendanceGoalPercent: m.AttendanceGoalPercent,
		AttendanceGoalMet:     m.AttendanceGoalMet,
		Ended:                 m.Ended,
		At:                    m.At,
	}
}

func toSessionDTO(s domain.Session) dto.Session {
	return dto.Session{
		ID:                     s.ID,
		ClassLabel:             s.ClassLabel,
		Subject:                s.Subject,
		Instructor:             s.Instructor,
		Room:                   s.Room,
		StartTime:              s.StartTime,
		PlannedDurationMinutes: s.PlannedDurationMinutes,
		TotalEnrolled:          s.TotalEnrolled,
	}
}

func toEventDTO(e domain.Event) dto.Event {
	out := dto.Event{Type: string(e.Type), At: e.At, Metrics: toMetricsDTO(e.Metrics)}
	if e.Record != nil {
		rec := toRecordDTO(*e.Record)
		out.Record = &rec
	}
	return out
}

func toOutcomeDTO(o domain.ScanOutcome) dto.ScanOutput {
	return dto.ScanOutput{Accepted: o.Accepted, Duplicate: o.Duplicate, Busy: o.Busy, Record: toRecordDTO(o.Record)}
}

func toHandleDTO(h domain.ReportHandle) dto.ReportHandle {
	return dto.ReportHandle{ID: h.ID, Kind: string(h.Kind), Format: string(h.Format), Path: h.Path, GeneratedAt: h.GeneratedAt}
}
