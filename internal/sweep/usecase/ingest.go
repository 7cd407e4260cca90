package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

type parseStats struct {
	total   int64
	ok      int64
	skipped int64
}

// Ingest parses each uploaded file into its own session. Files are processed
// sequentially; a file that cannot be ingested is reported as skipped and does
// not abort the rest of the batch.
func (u *Usecase) Ingest(ctx context.Context, uploads []Upload) ([]IngestOutcome, error) {
	if u.store == nil || u.id == nil {
		return nil, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if len(uploads) == 0 {
		return nil, pkgerror.NewInvalidInput(errors.New("at least one file is required"))
	}

	outcomes := make([]IngestOutcome, 0, len(uploads))
	for _, up := range uploads {
		outcomes = append(outcomes, u.ingestOne(ctx, up))
	}

	return outcomes, nil
}

func (u *Usecase) ingestOne(ctx context.Context, up Upload) IngestOutcome {
	if u.limits.MaxUploadBytes > 0 && int64(len(up.Content)) > u.limits.MaxUploadBytes {
		slog.WarnContext(ctx, "upload exceeds size limit", "file", up.Name, "bytes", len(up.Content))
		return IngestOutcome{Name: up.Name, Skipped: true, Reason: "file exceeds the upload size limit"}
	}

	format, ok := formatForName(up.Name)
	if !ok {
		slog.WarnContext(ctx, "unsupported file format", "file", up.Name)
		return IngestOutcome{
			Name:    up.Name,
			Skipped: true,
			Reason:  fmt.Sprintf("unsupported file format: %q", strings.ToLower(filepath.Ext(up.Name))),
		}
	}

	var table *entity.Table
	var stats parseStats
	var err error

	switch format {
	case entity.FileFormatCSV:
		table, stats, err = parseCSV(ctx, up.Content)
	case entity.FileFormatXLSX:
		table, stats, err = parseXLSX(ctx, up.Content)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to parse file", "file", up.Name, "error", err)
		return IngestOutcome{Name: up.Name, Skipped: true, Reason: fmt.Sprintf("failed to parse file: %v", err)}
	}

	size := up.Size
	if size == 0 {
		size = int64(len(up.Content))
	}

	meta := entity.FileMeta{
		ID:          u.id.Generate(),
		Name:        up.Name,
		Size:        size,
		Format:      format,
		UploadedAt:  u.clock.Now().Unix(),
		TotalRows:   stats.total,
		ParsedOK:    stats.ok,
		SkippedRows: stats.skipped,
	}

	if err := u.store.CreateFile(ctx, meta, table); err != nil {
		slog.ErrorContext(ctx, "failed to create file session", "file", up.Name, "error", err)
		return IngestOutcome{Name: up.Name, Skipped: true, Reason: "failed to create file session"}
	}

	return IngestOutcome{
		Name:    up.Name,
		Meta:    meta,
		Rows:    table.NumRows(),
		Columns: table.NumColumns(),
	}
}

func formatForName(name string) (entity.FileFormat, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return entity.FileFormatCSV, true
	case ".xlsx":
		return entity.FileFormatXLSX, true
	default:
		return "", false
	}
}

func parseCSV(ctx context.Context, data []byte) (*entity.Table, parseStats, error) {
	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Second and last decoding attempt. Latin-1 maps every byte, so this
		// one cannot fail.
		slog.InfoContext(ctx, "csv payload is not valid utf-8, decoding as latin-1")
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, parseStats{}, errors.New("file is empty")
	}
	if err != nil {
		return nil, parseStats{}, fmt.Errorf("read header: %w", err)
	}

	var stats parseStats
	records := make([][]string, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		stats.total++
		if err != nil {
			stats.skipped++
			slog.WarnContext(ctx, "skipping malformed csv row", "error", err)
			continue
		}
		if len(record) != len(header) {
			stats.skipped++
			continue
		}

		stats.ok++
		records = append(records, record)
	}

	return buildTable(header, records), stats, nil
}

func parseXLSX(ctx context.Context, data []byte) (*entity.Table, parseStats, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseStats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close workbook", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseStats{}, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseStats{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, parseStats{}, errors.New("sheet is empty")
	}

	header := rows[0]
	var stats parseStats
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		stats.total++
		if len(row) > len(header) {
			stats.skipped++
			continue
		}

		// excelize trims trailing empty cells, pad back to the header width
		for len(row) < len(header) {
			row = append(row, "")
		}

		stats.ok++
		records = append(records, row)
	}

	return buildTable(header, records), stats, nil
}

func buildTable(header []string, records [][]string) *entity.Table {
	table := &entity.Table{
		Columns: make([]entity.Column, len(header)),
		Rows:    make([][]entity.Cell, len(records)),
	}

	for i, record := range records {
		cells := make([]entity.Cell, len(header))
		for j, value := range record {
			if value == "" {
				cells[j] = entity.Cell{Missing: true}
			} else {
				cells[j] = entity.Cell{Value: value}
			}
		}
		table.Rows[i] = cells
	}

	for j, name := range header {
		table.Columns[j] = entity.Column{Name: name, Kind: detectKind(table.Rows, j)}
	}

	return table
}

// detectKind tags a column numeric when every non-missing cell parses as a
// float. A column with no non-missing cells is numeric, matching how dataframe
// libraries type an all-missing column.
func detectKind(rows [][]entity.Cell, col int) entity.ColumnKind {
	for _, row := range rows {
		if row[col].Missing {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(row[col].Value), 64); err != nil {
			return entity.ColumnKindText
		}
	}
	return entity.ColumnKindNumeric
}
