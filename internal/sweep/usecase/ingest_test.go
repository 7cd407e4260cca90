package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

func TestIngestCSV(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})

	csv := "name,age,score\nalice,30,1.5\nbob,,2.5\n"
	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "people.csv", Content: []byte(csv)},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}

	out := outcomes[0]
	if out.Skipped {
		t.Fatalf("file skipped: %s", out.Reason)
	}
	if out.Rows != 2 || out.Columns != 3 {
		t.Fatalf("unexpected shape: %d rows, %d columns", out.Rows, out.Columns)
	}
	if out.Meta.Format != entity.FileFormatCSV {
		t.Fatalf("unexpected format: %s", out.Meta.Format)
	}
	if out.Meta.TotalRows != 2 || out.Meta.ParsedOK != 2 || out.Meta.SkippedRows != 0 {
		t.Fatalf("unexpected stats: %+v", out.Meta)
	}

	table := storage.table(t, out.Meta.ID)
	wantKinds := []entity.ColumnKind{entity.ColumnKindText, entity.ColumnKindNumeric, entity.ColumnKindNumeric}
	for j, want := range wantKinds {
		if table.Columns[j].Kind != want {
			t.Fatalf("column %q: expected kind %s, got %s", table.Columns[j].Name, want, table.Columns[j].Kind)
		}
	}
	if !table.Rows[1][1].Missing {
		t.Fatal("empty cell should be missing")
	}
}

func TestIngestAllMissingColumnIsNumeric(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})

	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "gaps.csv", Content: []byte("a,b\n1,\n2,\n")},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if outcomes[0].Skipped {
		t.Fatalf("file skipped: %s", outcomes[0].Reason)
	}

	// No non-missing cell contradicts a float parse, so the column types as
	// an empty float column.
	table := storage.table(t, outcomes[0].Meta.ID)
	if table.Columns[1].Kind != entity.ColumnKindNumeric {
		t.Fatalf("all-missing column should be numeric, got %s", table.Columns[1].Kind)
	}
	if !table.Rows[0][1].Missing || !table.Rows[1][1].Missing {
		t.Fatal("cells should stay missing")
	}
}

func TestIngestSkipsMalformedRows(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	csv := "a,b\n1,2\n1,2,3\n3,4\n"
	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "data.csv", Content: []byte(csv)},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	out := outcomes[0]
	if out.Skipped {
		t.Fatalf("file skipped: %s", out.Reason)
	}
	if out.Rows != 2 {
		t.Fatalf("expected 2 parsed rows, got %d", out.Rows)
	}
	if out.Meta.TotalRows != 3 || out.Meta.ParsedOK != 2 || out.Meta.SkippedRows != 1 {
		t.Fatalf("unexpected stats: %+v", out.Meta)
	}
}

func TestIngestLatin1Fallback(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})

	// 0xE9 is é in Latin-1 and an invalid byte sequence in UTF-8.
	csv := []byte("name\ncaf\xe9\n")
	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "menu.csv", Content: csv},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	out := outcomes[0]
	if out.Skipped {
		t.Fatalf("file skipped: %s", out.Reason)
	}

	table := storage.table(t, out.Meta.ID)
	if got := table.Rows[0][0].Value; got != "café" {
		t.Fatalf("expected latin-1 decoded value, got %q", got)
	}
}

func TestIngestBatchWithUnsupportedFile(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "notes.txt", Content: []byte("hello")},
		{Name: "data.csv", Content: []byte("a\n1\n")},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	if !outcomes[0].Skipped {
		t.Fatal("txt file should be skipped")
	}
	if !strings.Contains(outcomes[0].Reason, `unsupported file format: ".txt"`) {
		t.Fatalf("unexpected reason: %s", outcomes[0].Reason)
	}
	if outcomes[1].Skipped {
		t.Fatalf("csv file skipped: %s", outcomes[1].Reason)
	}
}

func TestIngestEnforcesSizeLimit(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{MaxUploadBytes: 8})

	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "big.csv", Content: []byte("a,b\n1,2\n3,4\n")},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !outcomes[0].Skipped {
		t.Fatal("oversized file should be skipped")
	}
}

func TestIngestEmptyBatch(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	if _, err := uc.Ingest(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestIngestEmptyCSV(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "empty.csv", Content: nil},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !outcomes[0].Skipped {
		t.Fatal("empty file should be skipped")
	}
	if !strings.Contains(outcomes[0].Reason, "file is empty") {
		t.Fatalf("unexpected reason: %s", outcomes[0].Reason)
	}
}

func TestIngestXLSX(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})

	workbook := buildWorkbook(t, [][]any{
		{"city", "population"},
		{"oslo", 700000},
		{"bergen"}, // short row, padded with a missing cell
	})

	outcomes, err := uc.Ingest(context.Background(), []Upload{
		{Name: "cities.xlsx", Content: workbook},
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	out := outcomes[0]
	if out.Skipped {
		t.Fatalf("file skipped: %s", out.Reason)
	}
	if out.Meta.Format != entity.FileFormatXLSX {
		t.Fatalf("unexpected format: %s", out.Meta.Format)
	}
	if out.Rows != 2 || out.Columns != 2 {
		t.Fatalf("unexpected shape: %d rows, %d columns", out.Rows, out.Columns)
	}

	table := storage.table(t, out.Meta.ID)
	if table.Columns[1].Kind != entity.ColumnKindNumeric {
		t.Fatalf("population should be numeric, got %s", table.Columns[1].Kind)
	}
	if !table.Rows[1][1].Missing {
		t.Fatal("short row should be padded with a missing cell")
	}
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			t.Fatalf("close workbook: %v", err)
		}
	}()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
