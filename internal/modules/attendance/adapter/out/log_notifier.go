package out

import (
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
)

// LogNotifier is the headless toast sink: every user-facing event becomes
// one log line.
type LogNotifier struct {
	logger hclog.Logger
}

func NewLogNotifier(logger hclog.Logger) LogNotifier {
	return LogNotifier{logger: logger}
}

func (n LogNotifier) Notify(event domain.Event) {
	msg, ok := Toast(event)
	if !ok {
		return
	}
	n.logger.Info(msg, "present", event.Metrics.PresentCount, "rate", event.Metrics.AttendanceRatePercent)
}

// Toast renders the short message shown for an event. Ticks have none.
func Toast(event domain.Event) (string, bool) {
	name := ""
	if event.Record != nil {
		name = event.Record.DisplayName
	}
	switch event.Type {
	case domain.EventScanAccepted:
		return fmt.Sprintf("%s marked present", name), true
	case domain.EventScanDuplicate:
		return fmt.Sprintf("%s is already registered", name), true
	case domain.EventAbsenceMarked:
		return fmt.Sprintf("%s marked absent", name), true
	case domain.EventStudentEnrolled:
		return fmt.Sprintf("%s enrolled", name), true
	case domain.EventSessionEnded:
		return fmt.Sprintf("session ended with %d%% attendance", event.Metrics.AttendanceRatePercent), true
	default:
		return "", false
	}
}
