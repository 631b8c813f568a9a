package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "faceclass/internal/platform/errors"
)

type Trigger string

const (
	TriggerCron      Trigger = "cron"
	TriggerThreshold Trigger = "threshold"
)

// Rule schedules a report either on a cron spec or when a finished session's
// attendance rate falls below Threshold.
type Rule struct {
	Name        string  `yaml:"name"`
	Trigger     Trigger `yaml:"trigger"`
	Spec        string  `yaml:"spec,omitempty"`
	Threshold   float64 `yaml:"threshold,omitempty"`
	Kind        Kind    `yaml:"kind"`
	Format      Format  `yaml:"format"`
	Enabled     bool    `yaml:"enabled"`
	Description string  `yaml:"description,omitempty"`
}

func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: rule name is required", apperrors.ErrInvalidInput)
	}
	if err := r.Kind.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.Name, err)
	}
	if err := r.Format.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.Name, err)
	}
	switch r.Trigger {
	case TriggerCron:
		if _, err := r.Schedule(); err != nil {
			return err
		}
	case TriggerThreshold:
		if r.Threshold <= 0 || r.Threshold > 100 {
			return fmt.Errorf("%w: rule %s: threshold must be in (0,100]", apperrors.ErrInvalidInput, r.Name)
		}
	default:
		return fmt.Errorf("%w: rule %s: unknown trigger %q", apperrors.ErrInvalidInput, r.Name, r.Trigger)
	}
	return nil
}

func (r Rule) Schedule() (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(r.Spec)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s: cron spec %q: %v", apperrors.ErrInvalidInput, r.Name, r.Spec, err)
	}
	return schedule, nil
}

// NextRun is zero for threshold rules and for disabled rules.
func (r Rule) NextRun(from time.Time) time.Time {
	if !r.Enabled || r.Trigger != TriggerCron {
		return time.Time{}
	}
	schedule, err := r.Schedule()
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(from)
}

func (r Rule) CadenceDescription() string {
	if r.Description != "" {
		return r.Description
	}
	if r.Trigger == TriggerThreshold {
		return fmt.Sprintf("When attendance falls below %.0f%%", r.Threshold)
	}
	return "cron " + r.Spec
}

// Fires reports whether a threshold rule reacts to the given final rate.
func (r Rule) Fires(ratePercent int) bool {
	return r.Enabled && r.Trigger == TriggerThreshold && float64(ratePercent) < r.Threshold
}

func DefaultRules() []Rule {
	return []Rule{
		{Name: "Weekly report", Trigger: TriggerCron, Spec: "0 8 * * 1", Kind: KindWeeklySummary, Format: FormatExcel, Enabled: true, Description: "Every Monday at 08:00"},
		{Name: "Monthly analysis", Trigger: TriggerCron, Spec: "0 9 1 * *", Kind: KindClassAnalytics, Format: FormatExcel, Enabled: true, Description: "1st of every month at 09:00"},
		{Name: "Attendance alert", Trigger: TriggerThreshold, Threshold: 75, Kind: KindAttendanceSummary, Format: FormatMarkdown, Enabled: false, Description: "When attendance falls below 75%"},
		{Name: "Semester report", Trigger: TriggerCron, Spec: "0 9 1 */6 *", Kind: KindClassAnalytics, Format: FormatExcel, Enabled: true, Description: "Every 6 months"},
	}
}
