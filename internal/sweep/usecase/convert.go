package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Export serializes the current table into the target format. The buffer is
// fully materialized before it is returned, so the download boundary never
// sees a partial artifact.
func (u *Usecase) Export(ctx context.Context, fileID string, format entity.ExportFormat) (ExportResult, error) {
	if fileID == "" {
		return ExportResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	mimeType := format.MIME()
	ext := format.Extension()
	if mimeType == "" || ext == "" {
		return ExportResult{}, pkgerror.NewBusiness("conversion incomplete: no target format selected", pkgerror.CodeInvalidInput)
	}

	meta, table, err := u.store.GetFile(ctx, fileID)
	if err != nil {
		return ExportResult{}, mapStoreErr(err)
	}

	fileName := replaceExtension(meta.Name, ext)
	if fileName == "" {
		return ExportResult{}, pkgerror.NewBusiness("conversion incomplete: could not derive the output file name", pkgerror.CodeInvalidInput)
	}

	var buf *bytes.Buffer
	switch format {
	case entity.ExportFormatCSV:
		buf, err = writeCSV(table)
	case entity.ExportFormatExcel:
		buf, err = writeXLSX(table)
	}
	if err != nil {
		return ExportResult{}, pkgerror.NewServer(fmt.Errorf("serialize table: %w", err))
	}

	u.publishAction(fileID, entity.ActionExport,
		fmt.Sprintf("exported %d rows as %s", table.NumRows(), fileName), int64(table.NumRows()))

	return ExportResult{
		FileID:   fileID,
		Format:   format,
		FileName: fileName,
		MIME:     mimeType,
		Data:     buf.Bytes(),
	}, nil
}

// replaceExtension swaps the extension of the original upload name, keeping
// the base name. Returns "" when no base name can be derived.
func replaceExtension(name, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return ""
	}
	return base + ext
}

func writeCSV(t *entity.Table) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col.Name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, cell := range row {
			if cell.Missing {
				record[j] = ""
			} else {
				record[j] = cell.Value
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf, nil
}

func writeXLSX(t *entity.Table) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		record := make([]interface{}, len(row))
		for j, cell := range row {
			switch {
			case cell.Missing:
				record[j] = nil
			case t.Columns[j].Kind == entity.ColumnKindNumeric:
				if v, err := strconv.ParseFloat(strings.TrimSpace(cell.Value), 64); err == nil {
					record[j] = v
				} else {
					record[j] = cell.Value
				}
			default:
				record[j] = cell.Value
			}
		}

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, axis, &record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	return f.WriteToBuffer()
}
