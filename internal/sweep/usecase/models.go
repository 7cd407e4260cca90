package usecase

import (
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Upload is one file received at the ingestion boundary. The bytes are parsed
// once and never retained.
type Upload struct {
	Name    string
	Size    int64
	Content []byte
}

// IngestOutcome reports what happened to a single uploaded file. Skipped files
// carry an error message; accepted files carry the session metadata.
type IngestOutcome struct {
	Name    string
	Skipped bool
	Reason  string
	Meta    entity.FileMeta
	Rows    int
	Columns int
}

type DetailResult struct {
	Meta    entity.FileMeta
	Columns []entity.Column
	Preview [][]entity.Cell
}

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

// SummaryResult is the on-demand report over the current table. Never cached.
type SummaryResult struct {
	Meta          entity.FileMeta
	Rows          int
	Columns       int
	MissingCells  int
	DuplicateRows int
	NumericStats  []ColumnStats
}

type CleanResult struct {
	FileID   string
	Action   entity.ActionKind
	Affected int64
	Rows     int
	Columns  int
}

type ProjectResult struct {
	FileID  string
	Columns []entity.Column
	Rows    int
}

type ChartResult struct {
	FileID  string
	Columns []string
	PNG     []byte
}

type ExportResult struct {
	FileID   string
	Format   entity.ExportFormat
	FileName string
	MIME     string
	Data     []byte
}
