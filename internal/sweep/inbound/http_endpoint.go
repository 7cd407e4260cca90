package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgrouter"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
	"github.com/varoonsolanki/datasweeper/internal/sweep/usecase"
)

const maxMultipartMemory = 32 << 20

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	uploads, err := extractUploads(r)
	if err != nil {
		return nil, err
	}

	outcomes, err := h.uc.Ingest(ctx, uploads)
	if err != nil {
		return nil, err
	}

	return toUploadResponse(outcomes), nil
}

func (h *HTTPEndpoint) List(ctx context.Context, r *http.Request) (any, error) {
	metas, err := h.uc.List(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]FileMeta, 0, len(metas))
	for _, meta := range metas {
		files = append(files, toHTTPFileMeta(meta))
	}

	return ListResponse{Files: files}, nil
}

func (h *HTTPEndpoint) Detail(ctx context.Context, r *http.Request) (any, error) {
	fileID := pkgrouter.GetParam(ctx, "id")

	rows := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("rows")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 {
			return nil, pkgerror.NewInvalidInput(errors.New("invalid rows"))
		}
		rows = value
	}

	result, err := h.uc.Detail(ctx, fileID, rows)
	if err != nil {
		return nil, err
	}

	return DetailResponse{
		Meta:    toHTTPFileMeta(result.Meta),
		Columns: toHTTPColumns(result.Columns),
		Preview: toHTTPRows(result.Preview),
	}, nil
}

func (h *HTTPEndpoint) Summary(ctx context.Context, r *http.Request) (any, error) {
	result, err := h.uc.Summary(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	stats := make([]ColumnStats, 0, len(result.NumericStats))
	for _, s := range result.NumericStats {
		stats = append(stats, ColumnStats(s))
	}

	return SummaryResponse{
		Meta:          toHTTPFileMeta(result.Meta),
		Rows:          result.Rows,
		Columns:       result.Columns,
		MissingCells:  result.MissingCells,
		DuplicateRows: result.DuplicateRows,
		NumericStats:  stats,
	}, nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	events, err := h.uc.History(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	items := make([]ActionEvent, 0, len(events))
	for _, ev := range events {
		items = append(items, ActionEvent{
			EventID:  ev.EventID,
			Action:   ev.Kind,
			Detail:   ev.Detail,
			Affected: ev.Affected,
			At:       ev.At,
		})
	}

	return HistoryResponse{FileID: pkgrouter.GetParam(ctx, "id"), Events: items}, nil
}

func (h *HTTPEndpoint) Clean(ctx context.Context, r *http.Request) (any, error) {
	var req CleanRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	action, err := parseAction(req.Action)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Clean(ctx, pkgrouter.GetParam(ctx, "id"), action)
	if err != nil {
		return nil, err
	}

	return CleanResponse{
		FileID:   result.FileID,
		Action:   result.Action,
		Affected: result.Affected,
		Rows:     result.Rows,
		Columns:  result.Columns,
	}, nil
}

func (h *HTTPEndpoint) Columns(ctx context.Context, r *http.Request) (any, error) {
	var req ColumnsRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.Project(ctx, pkgrouter.GetParam(ctx, "id"), req.Columns)
	if err != nil {
		return nil, err
	}

	return ColumnsResponse{
		FileID:  result.FileID,
		Columns: toHTTPColumns(result.Columns),
		Rows:    result.Rows,
	}, nil
}

func (h *HTTPEndpoint) Chart(ctx context.Context, r *http.Request) (any, error) {
	result, err := h.uc.Chart(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return ChartResponse{png: result.PNG}, nil
}

func (h *HTTPEndpoint) Export(ctx context.Context, r *http.Request) (any, error) {
	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	result, err := h.uc.Export(ctx, pkgrouter.GetParam(ctx, "id"), parseExportFormat(req.Format))
	if err != nil {
		return nil, err
	}

	return ExportResponse{
		fileName: result.FileName,
		mime:     result.MIME,
		data:     result.Data,
	}, nil
}

func (h *HTTPEndpoint) Delete(ctx context.Context, r *http.Request) (any, error) {
	if err := h.uc.Delete(ctx, pkgrouter.GetParam(ctx, "id")); err != nil {
		return nil, err
	}
	return nil, nil
}

func parseAction(value string) (entity.ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "remove_duplicates":
		return entity.ActionRemoveDuplicates, nil
	case "fill_missing_mean":
		return entity.ActionFillMissingMean, nil
	case "impute_mixed":
		return entity.ActionImputeMixed, nil
	default:
		return "", pkgerror.NewInvalidInput(fmt.Errorf("invalid cleaning action: %q", value))
	}
}

// parseExportFormat maps the wire value, leaving unknown values empty so the
// usecase can report the conversion as incomplete.
func parseExportFormat(value string) entity.ExportFormat {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return entity.ExportFormatCSV
	case "excel", "xlsx":
		return entity.ExportFormatExcel
	default:
		return ""
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidFormat()
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerror.NewInvalidFormat()
	}
	return nil
}

func extractUploads(r *http.Request) ([]usecase.Upload, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return nil, pkgerror.NewInvalidFormat()
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, pkgerror.NewInvalidInput(errors.New(`at least one part named "files" is required`))
	}

	uploads := make([]usecase.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, pkgerror.NewServer(err)
		}

		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, pkgerror.NewServer(err)
		}

		uploads = append(uploads, usecase.Upload{
			Name:    fh.Filename,
			Size:    fh.Size,
			Content: content,
		})
	}

	return uploads, nil
}
