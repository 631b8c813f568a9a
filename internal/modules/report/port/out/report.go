package out

import (
	"context"
	"io"
	"time"

	"faceclass/internal/modules/report/domain"
)

type RuleStore interface {
	Load(ctx context.Context) ([]domain.Rule, error)
}

// Writer renders one report format.
type Writer interface {
	Format() domain.Format
	Extension() string
	Write(w io.Writer, kind domain.Kind, snapshot domain.Snapshot) error
}

type Archive interface {
	Record(ctx context.Context, handle domain.Handle) error
	Recent(ctx context.Context, limit int) ([]domain.Handle, error)
	RecordSession(ctx context.Context, snapshot domain.Snapshot) error
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	// Sessions lists archived sessions that ended in [from, to).
	Sessions(ctx context.Context, from, to time.Time) ([]domain.SessionSample, error)
}

// SnapshotSource supplies the live projection to scheduled jobs.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}
