package inbound

import (
	"context"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgrouter"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
	"github.com/varoonsolanki/datasweeper/internal/sweep/usecase"
)

type uc interface {
	Ingest(ctx context.Context, uploads []usecase.Upload) ([]usecase.IngestOutcome, error)
	List(ctx context.Context) ([]entity.FileMeta, error)
	Detail(ctx context.Context, fileID string, previewRows int) (usecase.DetailResult, error)
	Summary(ctx context.Context, fileID string) (usecase.SummaryResult, error)
	History(ctx context.Context, fileID string) ([]entity.ActionEvent, error)
	Clean(ctx context.Context, fileID string, action entity.ActionKind) (usecase.CleanResult, error)
	Project(ctx context.Context, fileID string, columns []string) (usecase.ProjectResult, error)
	Chart(ctx context.Context, fileID string) (usecase.ChartResult, error)
	Export(ctx context.Context, fileID string, format entity.ExportFormat) (usecase.ExportResult, error)
	Delete(ctx context.Context, fileID string) error
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/files", end.Upload)
	r.GET("/files", end.List)

	r.GET("/files/:id", end.Detail) // ?rows=
	r.DELETE("/files/:id", end.Delete)

	r.GET("/files/:id/summary", end.Summary)
	r.GET("/files/:id/history", end.History)
	r.GET("/files/:id/chart", end.Chart)

	r.POST("/files/:id/clean", end.Clean)
	r.POST("/files/:id/columns", end.Columns)
	r.POST("/files/:id/export", end.Export)
}
