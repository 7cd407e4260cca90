package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Clean applies one cleaning action to the file's table and commits the result
// in place. Running an action against an already-clean table is a no-op.
func (u *Usecase) Clean(ctx context.Context, fileID string, action entity.ActionKind) (CleanResult, error) {
	if fileID == "" {
		return CleanResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	var affected int64
	var rows, cols int

	err := u.store.UpdateTable(ctx, fileID, func(meta *entity.FileMeta, table *entity.Table) error {
		switch action {
		case entity.ActionRemoveDuplicates:
			affected = removeDuplicates(table)
		case entity.ActionFillMissingMean:
			affected = fillMissingNumericMean(table)
		case entity.ActionImputeMixed:
			affected = imputeMixed(table)
		default:
			return pkgerror.NewInvalidInput(fmt.Errorf("unknown cleaning action: %q", action))
		}

		meta.Actions++
		rows = table.NumRows()
		cols = table.NumColumns()
		return nil
	})
	if err != nil {
		return CleanResult{}, mapStoreErr(err)
	}

	u.publishAction(fileID, action, cleanDetail(action, affected), affected)

	return CleanResult{
		FileID:   fileID,
		Action:   action,
		Affected: affected,
		Rows:     rows,
		Columns:  cols,
	}, nil
}

func cleanDetail(action entity.ActionKind, affected int64) string {
	switch action {
	case entity.ActionRemoveDuplicates:
		return fmt.Sprintf("removed %d duplicate rows", affected)
	default:
		return fmt.Sprintf("filled %d missing cells", affected)
	}
}

// removeDuplicates drops rows that equal an earlier row across all columns,
// keeping first occurrences in order. Returns the number of rows removed.
func removeDuplicates(t *entity.Table) int64 {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	var removed int64

	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	t.Rows = kept
	return removed
}

// rowKey encodes a full row for equality checks. Missing cells are encoded
// distinctly from empty values.
func rowKey(row []entity.Cell) string {
	var b strings.Builder
	for _, cell := range row {
		if cell.Missing {
			b.WriteByte(0x01)
		} else {
			b.WriteByte(0x02)
			b.WriteString(cell.Value)
		}
		b.WriteByte(0x00)
	}
	return b.String()
}

// fillMissingNumericMean replaces missing cells in numeric columns with the
// column mean over non-missing values. A numeric column with no non-missing
// values stays missing: there is nothing to derive a fill from. Returns the
// number of cells filled.
func fillMissingNumericMean(t *entity.Table) int64 {
	var filled int64

	for j, col := range t.Columns {
		if col.Kind != entity.ColumnKindNumeric {
			continue
		}

		mean, ok := columnMean(t, j)
		if !ok {
			continue
		}

		value := strconv.FormatFloat(mean, 'g', -1, 64)
		for i := range t.Rows {
			if t.Rows[i][j].Missing {
				t.Rows[i][j] = entity.Cell{Value: value}
				filled++
			}
		}
	}

	return filled
}

// imputeMixed mean-fills numeric columns and mode-fills text columns in one
// pass. Returns the total number of cells filled.
func imputeMixed(t *entity.Table) int64 {
	filled := fillMissingNumericMean(t)

	for j, col := range t.Columns {
		if col.Kind != entity.ColumnKindText {
			continue
		}

		mode, ok := columnMode(t, j)
		if !ok {
			continue
		}

		for i := range t.Rows {
			if t.Rows[i][j].Missing {
				t.Rows[i][j] = entity.Cell{Value: mode}
				filled++
			}
		}
	}

	return filled
}

func columnMean(t *entity.Table, col int) (float64, bool) {
	var sum float64
	var count int

	for _, row := range t.Rows {
		if row[col].Missing {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col].Value), 64)
		if err != nil {
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// columnMode returns the most frequent non-missing value. Ties break toward
// the value first encountered in row order.
func columnMode(t *entity.Table, col int) (string, bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, row := range t.Rows {
		if row[col].Missing {
			continue
		}
		v := row[col].Value
		if _, seen := counts[v]; !seen {
			firstSeen[v] = i
		}
		counts[v]++
	}

	var best string
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && firstSeen[v] < firstSeen[best]) {
			best = v
			bestCount = c
		}
	}

	return best, bestCount > 0
}
