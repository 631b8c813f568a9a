package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"faceclass/internal/bootstrap"
	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/platform/config"
	apperrors "faceclass/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	dataDir    string
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "faceclass",
		Short:         "Classroom attendance by face scan",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data", ".", "data directory (config, reports, archive)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default <data>/"+config.FileName+")")

	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newSimulateCmd(opts))
	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newRosterCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newDeviceCmd(opts))
	return root
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	dataDir, err := filepath.Abs(opts.dataDir)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(dataDir, opts.configPath)
}

func loadApp(opts *rootOptions, logOut io.Writer) (*bootstrap.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, logOut)
}

// closeApp runs deferred at the end of every command; a close failure is
// logged because the command's own result has already been decided.
func closeApp(app io.Closer, logger hclog.Logger) {
	if err := app.Close(); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write default schedule rules into the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			wrote, err := bootstrap.InitDataDir(cfg, force)
			if err != nil {
				return err
			}
			if !wrote {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (use --force to overwrite)\n", cfg.RulesPath)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.RulesPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing rules")
	return cmd
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the attendance dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logPath := filepath.Join(filepath.Dir(cfg.DBPath), "faceclass.log")
			if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
				return err
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			app, err := bootstrap.New(cfg, logFile)
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		scans    int
		interval time.Duration
		end      bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless session with simulated scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := 0; i < scans; i++ {
				res, err := app.AttendanceCLI.StartRecognition(ctx)
				switch {
				case errors.Is(err, context.Canceled):
					return nil
				case err != nil:
					_, _ = fmt.Fprintf(out, "scan %d: %v\n", i+1, err)
				default:
					_, _ = fmt.Fprintf(out, "scan %d: %s\n", i+1, describeScan(res))
				}
				if interval > 0 {
					select {
					case <-ctx.Done():
						return nil
					case <-time.After(interval):
					}
				}
			}

			metrics, err := app.AttendanceCLI.Metrics(ctx)
			if err != nil {
				return err
			}
			printMetrics(out, metrics)
			if !end {
				return nil
			}
			final, err := app.AttendanceCLI.EndSession(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "session ended at %d%%\n", final.Metrics.AttendanceRatePercent)
			for _, alert := range final.Alerts {
				_, _ = fmt.Fprintf(out, "alert report: %s\n", alert.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&scans, "scans", 5, "number of recognitions to run")
	cmd.Flags().DurationVar(&interval, "interval", 0, "pause between recognitions")
	cmd.Flags().BoolVar(&end, "end", false, "end the session afterwards and archive it")
	return cmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <name>...",
		Short: "Submit scans for the given names against the seeded roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			out := cmd.OutOrStdout()
			for _, name := range args {
				res, err := app.AttendanceCLI.Scan(cmd.Context(), name, time.Time{})
				if err != nil {
					if errors.Is(err, apperrors.ErrInvalidCandidate) {
						_, _ = fmt.Fprintf(out, "%q: not recognised, skipped\n", name)
						continue
					}
					return err
				}
				_, _ = fmt.Fprintln(out, describeScan(res))
			}
			metrics, err := app.AttendanceCLI.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			printMetrics(out, metrics)
			return nil
		},
	}
}

func newRosterCmd(opts *rootOptions) *cobra.Command {
	var presentOnly bool
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the seeded roster with live metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			roster, err := app.AttendanceCLI.Roster(cmd.Context(), presentOnly)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s  %s  (%s, %s)\n", roster.Session.ClassLabel, roster.Session.Subject, roster.Session.Instructor, roster.Session.Room)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STUDENT\tSTATUS\tSCANNED\tID")
			for _, rec := range roster.Records {
				scanned := "-"
				if rec.ScanTimestamp != nil {
					scanned = rec.ScanTimestamp.Format("15:04")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.DisplayName, rec.Status, scanned, rec.StudentID)
			}
			_ = tw.Flush()
			printMetrics(out, roster.Metrics)
			return nil
		},
	}
	cmd.Flags().BoolVar(&presentOnly, "present", false, "list present students only, latest first")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Report schedules, history and generation"}

	report.AddCommand(&cobra.Command{
		Use:   "rules",
		Short: "List schedule rules and their next run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			rules, err := app.ReportCLI.Rules(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "RULE\tENABLED\tKIND\tFORMAT\tCADENCE\tNEXT")
			for _, r := range rules {
				next := "-"
				if !r.NextRun.IsZero() {
					next = r.NextRun.Format("2006-01-02 15:04")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\n", r.Name, r.Enabled, r.Kind, r.Format, r.CadenceDescription, next)
			}
			return tw.Flush()
		},
	})

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recently generated reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			reports, err := app.ReportCLI.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reports")
				return nil
			}
			for _, r := range reports {
				rule := r.Rule
				if rule == "" {
					rule = "manual"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", r.GeneratedAt.Format("2006-01-02 15:04"), r.Kind, r.Format, rule, r.Path)
			}
			return nil
		},
	}
	recent.Flags().IntVar(&limit, "limit", 10, "number of reports")
	report.AddCommand(recent)

	report.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Per-student attendance across archived sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			history, err := app.ReportCLI.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(history) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no archived sessions")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STUDENT\tATTENDED\tSESSIONS")
			for _, h := range history {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", h.DisplayName, h.SessionsAttended, h.SessionsTotal)
			}
			return tw.Flush()
		},
	})

	report.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Attendance rate per weekday for the current week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			week, err := app.AttendanceCLI.Weekly(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "week of %s\n", week.WeekStart.Format("2006-01-02"))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DAY\tSESSIONS\tPRESENT\tRATE")
			for _, d := range week.Days {
				rate := "-"
				if d.Sessions > 0 {
					rate = fmt.Sprintf("%d%%", d.RatePercent)
				}
				_, _ = fmt.Fprintf(tw, "%s %s\t%d\t%d/%d\t%s\n", d.Day, d.Date.Format("02/01"), d.Sessions, d.Present, d.Enrolled, rate)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "weekly average: %d%%\n", week.AveragePercent)
			return nil
		},
	})

	var format string
	generate := &cobra.Command{
		Use:   "generate <kind>",
		Short: "Generate a report from the seeded session (attendance_summary|individual_report|class_analytics|weekly_summary)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			fut, err := app.AttendanceCLI.TriggerReport(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			handle, err := fut.Wait(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report %s written to %s\n", handle.ID, handle.Path)
			return nil
		},
	}
	generate.Flags().StringVar(&format, "format", "excel", "excel|markdown")
	report.AddCommand(generate)
	return report
}

func newDeviceCmd(opts *rootOptions) *cobra.Command {
	device := &cobra.Command{Use: "device", Short: "Scanner device plugins"}

	device.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured scanner devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			devices, err := app.DeviceCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no devices configured")
				return nil
			}
			for _, d := range devices {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\tmin_confidence=%.2f\t%s\t%s\n",
					d.Name, d.Version, d.Enabled, d.MinConfidence, strings.Join(d.Capabilities, ","), d.Binary)
			}
			return nil
		},
	})

	device.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate device checksums and start each enabled device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			results, err := app.DeviceCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no devices configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Model != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " model=%q", r.Model)
				}
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var name string
	recognize := &cobra.Command{
		Use:   "recognize <hint>",
		Short: "Ask a device to recognize a face hint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(app, app.Logger)
			out, err := app.DeviceCLI.Recognize(cmd.Context(), name, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s recognized %q confidence=%.2f\n", out.Device, out.DisplayName, out.Confidence)
			return nil
		},
	}
	recognize.Flags().StringVar(&name, "device", "", "device name (default first enabled)")
	device.AddCommand(recognize)
	return device
}

func describeScan(out dto.ScanOutput) string {
	switch {
	case out.Busy:
		return "scanner busy"
	case out.Duplicate:
		return out.Record.DisplayName + " already registered"
	default:
		return out.Record.DisplayName + " marked present"
	}
}

func printMetrics(w io.Writer, m dto.Metrics) {
	goal := "below goal"
	if m.AttendanceGoalMet {
		goal = "goal met"
	}
	_, _ = fmt.Fprintf(w, "present %d/%d (%d%%, %s %.0f%%)  absent %d  progress %.0f%% [%s]\n",
		m.PresentCount, m.TotalEnrolled, m.AttendanceRatePercent, goal, m.AttendanceGoalPercent,
		m.AbsentCount, m.ClassProgressPercent, m.ClassStatus)
}
