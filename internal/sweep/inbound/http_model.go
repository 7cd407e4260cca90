package inbound

import (
	"net/http"

	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
	"github.com/varoonsolanki/datasweeper/internal/sweep/usecase"
)

type CleanRequest struct {
	Action string `json:"action"`
}

type ColumnsRequest struct {
	// Absent field keeps every column; an explicit empty list projects the
	// table down to zero columns.
	Columns []string `json:"columns"`
}

type ExportRequest struct {
	Format string `json:"format"`
}

type FileMeta struct {
	FileID      string            `json:"file_id"`
	Name        string            `json:"name"`
	SizeBytes   int64             `json:"size_bytes"`
	Format      entity.FileFormat `json:"format"`
	UploadedAt  int64             `json:"uploaded_at"`
	TotalRows   int64             `json:"total_rows"`
	ParsedOK    int64             `json:"parsed_ok"`
	SkippedRows int64             `json:"skipped_rows"`
	Actions     int64             `json:"actions"`
}

type Column struct {
	Name string            `json:"name"`
	Kind entity.ColumnKind `json:"kind"`
}

type FileOutcome struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	FileID  string `json:"file_id,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Columns int    `json:"columns,omitempty"`
}

type UploadResponse struct {
	Files []FileOutcome `json:"files"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

func (UploadResponse) Message() string {
	return "all files processed"
}

type ListResponse struct {
	Files []FileMeta `json:"files"`
}

type DetailResponse struct {
	Meta    FileMeta    `json:"meta"`
	Columns []Column    `json:"columns"`
	Preview [][]*string `json:"preview"`
}

type ColumnStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

type SummaryResponse struct {
	Meta          FileMeta      `json:"meta"`
	Rows          int           `json:"rows"`
	Columns       int           `json:"columns"`
	MissingCells  int           `json:"missing_cells"`
	DuplicateRows int           `json:"duplicate_rows"`
	NumericStats  []ColumnStats `json:"numeric_stats"`
}

type ActionEvent struct {
	EventID  string            `json:"event_id"`
	Action   entity.ActionKind `json:"action"`
	Detail   string            `json:"detail"`
	Affected int64             `json:"affected"`
	At       int64             `json:"at"`
}

type HistoryResponse struct {
	FileID string        `json:"file_id"`
	Events []ActionEvent `json:"events"`
}

type CleanResponse struct {
	FileID   string            `json:"file_id"`
	Action   entity.ActionKind `json:"action"`
	Affected int64             `json:"affected"`
	Rows     int               `json:"rows"`
	Columns  int               `json:"columns"`
}

type ColumnsResponse struct {
	FileID  string   `json:"file_id"`
	Columns []Column `json:"columns"`
	Rows    int      `json:"rows"`
}

// ChartResponse streams the rendered PNG as-is instead of the JSON envelope.
type ChartResponse struct {
	png []byte
}

func (r ChartResponse) ContentType() string {
	return "image/png"
}

func (r ChartResponse) Payload() []byte {
	return r.png
}

// ExportResponse is offered as a download: raw bytes, derived file name, and
// the MIME type of the target format.
type ExportResponse struct {
	fileName string
	mime     string
	data     []byte
}

func (r ExportResponse) ContentType() string {
	return r.mime
}

func (r ExportResponse) Payload() []byte {
	return r.data
}

func (r ExportResponse) Filename() string {
	return r.fileName
}

func toUploadResponse(outcomes []usecase.IngestOutcome) UploadResponse {
	files := make([]FileOutcome, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Skipped {
			files = append(files, FileOutcome{
				Name:   out.Name,
				Status: "SKIPPED",
				Reason: out.Reason,
			})
			continue
		}

		files = append(files, FileOutcome{
			Name:    out.Name,
			Status:  "INGESTED",
			FileID:  out.Meta.ID,
			Rows:    out.Rows,
			Columns: out.Columns,
		})
	}

	return UploadResponse{Files: files}
}

func toHTTPFileMeta(meta entity.FileMeta) FileMeta {
	return FileMeta{
		FileID:      meta.ID,
		Name:        meta.Name,
		SizeBytes:   meta.Size,
		Format:      meta.Format,
		UploadedAt:  meta.UploadedAt,
		TotalRows:   meta.TotalRows,
		ParsedOK:    meta.ParsedOK,
		SkippedRows: meta.SkippedRows,
		Actions:     meta.Actions,
	}
}

func toHTTPColumns(columns []entity.Column) []Column {
	result := make([]Column, 0, len(columns))
	for _, col := range columns {
		result = append(result, Column{Name: col.Name, Kind: col.Kind})
	}
	return result
}

// toHTTPRows renders missing cells as JSON null.
func toHTTPRows(rows [][]entity.Cell) [][]*string {
	result := make([][]*string, len(rows))
	for i, row := range rows {
		rendered := make([]*string, len(row))
		for j, cell := range row {
			if cell.Missing {
				continue
			}
			value := cell.Value
			rendered[j] = &value
		}
		result[i] = rendered
	}
	return result
}
