package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Summary recomputes the report from the current table on every call.
func (u *Usecase) Summary(ctx context.Context, fileID string) (SummaryResult, error) {
	if fileID == "" {
		return SummaryResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	meta, table, err := u.store.GetFile(ctx, fileID)
	if err != nil {
		return SummaryResult{}, mapStoreErr(err)
	}

	result := SummaryResult{
		Meta:    meta,
		Rows:    table.NumRows(),
		Columns: table.NumColumns(),
	}

	seen := make(map[string]struct{}, len(table.Rows))
	for _, row := range table.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			result.DuplicateRows++
		} else {
			seen[key] = struct{}{}
		}

		for _, cell := range row {
			if cell.Missing {
				result.MissingCells++
			}
		}
	}

	for j, col := range table.Columns {
		if col.Kind != entity.ColumnKindNumeric {
			continue
		}
		result.NumericStats = append(result.NumericStats, numericStats(table, j))
	}

	return result, nil
}

func numericStats(t *entity.Table, col int) ColumnStats {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row[col].Missing {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col].Value), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	stats := ColumnStats{Name: t.Columns[col].Name, Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	s := series.New(values, series.Float, t.Columns[col].Name)
	stats.Mean = s.Mean()
	stats.Min = s.Min()
	stats.P25 = s.Quantile(0.25)
	stats.Median = s.Median()
	stats.P75 = s.Quantile(0.75)
	stats.Max = s.Max()
	if len(values) > 1 {
		stats.Std = s.StdDev()
	}

	return stats
}
