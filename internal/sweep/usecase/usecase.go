package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/pkg/pkguid"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

type Store interface {
	CreateFile(ctx context.Context, meta entity.FileMeta, table *entity.Table) error
	GetFile(ctx context.Context, fileID string) (entity.FileMeta, *entity.Table, error)
	ListFiles(ctx context.Context) ([]entity.FileMeta, error)
	UpdateTable(ctx context.Context, fileID string, fn func(meta *entity.FileMeta, table *entity.Table) error) error
	DeleteFile(ctx context.Context, fileID string) error
	ListHistory(ctx context.Context, fileID string) ([]entity.ActionEvent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.ActionEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

// Limits carries per-request bounds sourced from configuration.
type Limits struct {
	MaxUploadBytes int64
	PreviewRows    int
	MaxPreviewRows int
	MaxChartRows   int
}

type Dependency struct {
	Store   Store
	Events  EventPublisher
	Runner  Runner
	Clock   Clock
	ID      pkguid.StringID
	Limits  Limits
	RootCtx context.Context
}

type Usecase struct {
	store   Store
	events  EventPublisher
	runner  Runner
	clock   Clock
	id      pkguid.StringID
	limits  Limits
	rootCtx context.Context
}

const (
	defaultPreviewRows    = 5
	defaultMaxPreviewRows = 100
	defaultMaxChartRows   = 50
)

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	limits := dep.Limits
	if limits.PreviewRows < 1 {
		limits.PreviewRows = defaultPreviewRows
	}
	if limits.MaxPreviewRows < 1 {
		limits.MaxPreviewRows = defaultMaxPreviewRows
	}
	if limits.MaxChartRows < 1 {
		limits.MaxChartRows = defaultMaxChartRows
	}

	return &Usecase{
		store:   dep.Store,
		events:  dep.Events,
		runner:  dep.Runner,
		clock:   clock,
		id:      dep.ID,
		limits:  limits,
		rootCtx: root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (u *Usecase) List(ctx context.Context) ([]entity.FileMeta, error) {
	metas, err := u.store.ListFiles(ctx)
	if err != nil {
		return nil, normalizeErr(err)
	}
	return metas, nil
}

func (u *Usecase) Detail(ctx context.Context, fileID string, previewRows int) (DetailResult, error) {
	if fileID == "" {
		return DetailResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	if previewRows < 1 {
		previewRows = u.limits.PreviewRows
	}
	if previewRows > u.limits.MaxPreviewRows {
		previewRows = u.limits.MaxPreviewRows
	}

	meta, table, err := u.store.GetFile(ctx, fileID)
	if err != nil {
		return DetailResult{}, mapStoreErr(err)
	}

	if previewRows > table.NumRows() {
		previewRows = table.NumRows()
	}

	return DetailResult{
		Meta:    meta,
		Columns: table.Columns,
		Preview: table.Rows[:previewRows],
	}, nil
}

func (u *Usecase) History(ctx context.Context, fileID string) ([]entity.ActionEvent, error) {
	if fileID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	events, err := u.store.ListHistory(ctx, fileID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return events, nil
}

func (u *Usecase) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	if err := u.store.DeleteFile(ctx, fileID); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// publishAction hands a committed action to the event bus without blocking the
// request. A lost event only loses a history entry, so failures are logged and
// swallowed.
func (u *Usecase) publishAction(fileID string, kind entity.ActionKind, detail string, affected int64) {
	if u.events == nil || u.id == nil {
		return
	}

	event := entity.ActionEvent{
		EventID:  u.id.Generate(),
		FileID:   fileID,
		Kind:     kind,
		Detail:   detail,
		Affected: affected,
		At:       u.clock.Now().Unix(),
	}

	publish := func(ctx context.Context) error {
		if err := u.events.Publish(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish action event",
				"file_id", fileID, "event_id", event.EventID, "error", err)
		}
		return nil
	}

	if u.runner != nil {
		u.runner.Go(u.rootCtx, publish)
		return
	}
	_ = publish(u.rootCtx)
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("file not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
