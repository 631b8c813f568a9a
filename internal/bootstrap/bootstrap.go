package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	attendanceinadapter "faceclass/internal/modules/attendance/adapter/in"
	attendanceoutadapter "faceclass/internal/modules/attendance/adapter/out"
	attendancedomain "faceclass/internal/modules/attendance/domain"
	attendancein "faceclass/internal/modules/attendance/port/in"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	attendanceservice "faceclass/internal/modules/attendance/service"
	attendanceusecase "faceclass/internal/modules/attendance/usecase"
	deviceinadapter "faceclass/internal/modules/device/adapter/in"
	deviceoutadapter "faceclass/internal/modules/device/adapter/out"
	deviceservice "faceclass/internal/modules/device/service"
	deviceusecase "faceclass/internal/modules/device/usecase"
	reportinadapter "faceclass/internal/modules/report/adapter/in"
	reportoutadapter "faceclass/internal/modules/report/adapter/out"
	reportservice "faceclass/internal/modules/report/service"
	reportusecase "faceclass/internal/modules/report/usecase"
	"faceclass/internal/platform/clock"
	"faceclass/internal/platform/config"
	"faceclass/internal/platform/id"
	"faceclass/internal/platform/logging"
	uiapp "faceclass/internal/ui/app"
)

type App struct {
	Config        config.Config
	Logger        hclog.Logger
	AttendanceCLI attendanceinadapter.CLIHandler
	ReportCLI     reportinadapter.CLIHandler
	DeviceCLI     deviceinadapter.CLIHandler
	Scheduler     *reportservice.Scheduler

	attendance attendancein.Usecase
	closers    []func() error
	closeOnce  sync.Once
}

// New wires every module for one class session. logOut receives the log
// stream; nil means stderr.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}
	logger := logging.New(cfg.LogLevel, logOut)
	app := &App{Config: cfg, Logger: logger}

	archive, err := reportoutadapter.NewSQLiteArchive(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new report archive: %w", err)
	}
	app.closers = append(app.closers, archive.Close)
	reportSvc := reportservice.NewReportService(
		clk, ids,
		reportoutadapter.NewFileRuleStore(cfg.RulesPath),
		archive,
		cfg.ReportsDir,
		logger,
		reportoutadapter.NewExcelWriter(),
		reportoutadapter.NewMarkdownWriter(),
	)
	reportUC := reportusecase.NewInteractor(reportSvc)

	deviceHost := deviceoutadapter.NewGRPCHost(logger)
	app.closers = append(app.closers, func() error { deviceHost.Close(); return nil })
	deviceUC := deviceusecase.NewInteractor(deviceservice.NewDeviceService(
		deviceoutadapter.NewFileManifestStore(cfg.Scanner.DeviceDir),
		deviceHost,
		logger,
	))

	var resolver attendanceout.IdentityResolver
	switch cfg.Scanner.Resolver {
	case "device":
		resolver = attendanceoutadapter.NewDeviceResolver(deviceUC, cfg.Scanner.Device)
	default:
		resolver = attendanceoutadapter.NewSimulatedResolver(cfg.Scanner.Latency)
	}

	engine := attendanceservice.NewEngine(attendanceservice.Options{
		Session: attendancedomain.Session{
			ClassLabel:             cfg.Class.Label,
			Subject:                cfg.Class.Subject,
			Instructor:             cfg.Class.Instructor,
			Room:                   cfg.Class.Room,
			PlannedDurationMinutes: cfg.Class.PlannedDurationMinutes,
			TotalEnrolled:          cfg.Class.TotalEnrolled,
			GoalPercent:            cfg.Class.GoalPercent,
		},
		TickInterval: cfg.Scanner.TickInterval,
	}, clk, ids, resolver, logger)

	seeds, err := SeedRecords(cfg.Class.Roster, engine.Session().StartTime)
	if err != nil {
		return nil, err
	}
	if err := engine.Seed(seeds); err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}
	unsubscribe := engine.Subscribe(attendanceoutadapter.NewLogNotifier(logger.Named("toast")))
	app.closers = append(app.closers, func() error { unsubscribe(); return nil })

	candidates := attendanceoutadapter.NewRandomCandidates(cfg.Scanner.Names, uint64(time.Now().UnixNano()), clk)
	attendanceUC := attendanceusecase.NewInteractor(engine, candidates, attendanceoutadapter.NewReportRegistry(reportUC, logger), logger)

	app.Scheduler = reportservice.NewScheduler(reportSvc, reportoutadapter.NewAttendanceSnapshotSource(attendanceUC), logger)
	app.attendance = attendanceUC
	app.AttendanceCLI = attendanceinadapter.NewCLIHandler(attendanceUC)
	app.ReportCLI = reportinadapter.NewCLIHandler(reportUC)
	app.DeviceCLI = deviceinadapter.NewCLIHandler(deviceUC)
	return app, nil
}

// SeedRecords turns configured "HH:MM" scan times into instants on day.
func SeedRecords(roster []config.SeedStudent, day time.Time) ([]attendanceservice.SeedRecord, error) {
	out := make([]attendanceservice.SeedRecord, 0, len(roster))
	for _, s := range roster {
		seed := attendanceservice.SeedRecord{Name: s.Name, Avatar: s.Avatar}
		if s.ScannedAt != "" {
			hm, err := time.Parse("15:04", s.ScannedAt)
			if err != nil {
				return nil, fmt.Errorf("seed %q scanned_at: %w", s.Name, err)
			}
			at := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, day.Location())
			seed.ScannedAt = &at
		}
		out = append(out, seed)
	}
	return out, nil
}

// InitDataDir writes the editable default schedule rules unless they
// already exist. It reports whether a file was written.
func InitDataDir(cfg config.Config, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(cfg.RulesPath); err == nil {
			return false, nil
		}
	}
	if err := reportoutadapter.WriteDefaultRules(cfg.RulesPath); err != nil {
		return false, err
	}
	if err := os.MkdirAll(cfg.Scanner.DeviceDir, 0o755); err != nil {
		return false, fmt.Errorf("create device dir: %w", err)
	}
	return true, nil
}

// Start runs the session clock and the report scheduler until ctx ends.
func (a *App) Start(ctx context.Context) error {
	scheduled, err := a.Scheduler.Start(ctx)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.Logger.Debug("scheduler started", "rules", scheduled)
	a.closers = append(a.closers, func() error {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Scheduler.Stop(stopCtx)
		return nil
	})
	go func() {
		if err := a.attendance.RunClock(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("session clock stopped", "error", err)
		}
	}()
	return nil
}

// Close releases plugins, the scheduler and the archive, newest first.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	model := uiapp.NewModel(app.attendance)
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
