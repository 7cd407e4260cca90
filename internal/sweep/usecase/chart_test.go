package usecase

import (
	"bytes"
	"context"
	"testing"

	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestChartRendersPNG(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", numericTable())

	result, err := uc.Chart(context.Background(), "f1")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}

	if len(result.Columns) != 2 || result.Columns[0] != "a" || result.Columns[1] != "b" {
		t.Fatalf("unexpected chart columns: %v", result.Columns)
	}
	if !bytes.HasPrefix(result.PNG, pngMagic) {
		t.Fatal("payload is not a PNG")
	}
}

func TestChartSingleNumericColumnBars(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", &entity.Table{
		Columns: []entity.Column{
			{Name: "city", Kind: entity.ColumnKindText},
			{Name: "score", Kind: entity.ColumnKindNumeric},
		},
		Rows: [][]entity.Cell{
			{cell("oslo"), cell("3")},
			{cell("bergen"), cell("5")},
			{cell("tromso"), missing()},
		},
	})

	result, err := uc.Chart(context.Background(), "f1")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if len(result.Columns) != 1 || result.Columns[0] != "score" {
		t.Fatalf("unexpected chart columns: %v", result.Columns)
	}
	if !bytes.HasPrefix(result.PNG, pngMagic) {
		t.Fatal("payload is not a PNG")
	}
}

func TestChartSingleRow(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", &entity.Table{
		Columns: []entity.Column{{Name: "a", Kind: entity.ColumnKindNumeric}},
		Rows:    [][]entity.Cell{{cell("7")}},
	})

	result, err := uc.Chart(context.Background(), "f1")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if !bytes.HasPrefix(result.PNG, pngMagic) {
		t.Fatal("payload is not a PNG")
	}
}

func TestChartAllMissingNumericColumn(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", &entity.Table{
		Columns: []entity.Column{{Name: "a", Kind: entity.ColumnKindNumeric}},
		Rows:    [][]entity.Cell{{missing()}, {missing()}},
	})

	if _, err := uc.Chart(context.Background(), "f1"); err == nil {
		t.Fatal("expected error when the numeric column holds no values")
	}
}

func TestChartNoNumericColumns(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", &entity.Table{
		Columns: []entity.Column{{Name: "name", Kind: entity.ColumnKindText}},
		Rows:    [][]entity.Cell{{cell("a")}},
	})

	if _, err := uc.Chart(context.Background(), "f1"); err == nil {
		t.Fatal("expected error for a table without numeric columns")
	}
}
