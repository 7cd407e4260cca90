package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// Project restricts the table to the named columns, in the given order. Row
// count and row order are preserved. A nil selection keeps every column, an
// explicitly empty one keeps every row as a zero-column record. An unknown
// column name fails the whole request and leaves the table untouched.
func (u *Usecase) Project(ctx context.Context, fileID string, names []string) (ProjectResult, error) {
	if fileID == "" {
		return ProjectResult{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	var result ProjectResult

	err := u.store.UpdateTable(ctx, fileID, func(meta *entity.FileMeta, table *entity.Table) error {
		selected := names
		if selected == nil {
			selected = make([]string, len(table.Columns))
			for i, col := range table.Columns {
				selected[i] = col.Name
			}
		}

		indexes := make([]int, len(selected))
		for i, name := range selected {
			k := table.ColumnIndex(name)
			if k < 0 {
				return pkgerror.NewInvalidInput(fmt.Errorf("unknown column: %q", name))
			}
			indexes[i] = k
		}

		columns := make([]entity.Column, len(indexes))
		for i, k := range indexes {
			columns[i] = table.Columns[k]
		}

		rows := make([][]entity.Cell, len(table.Rows))
		for i, row := range table.Rows {
			next := make([]entity.Cell, len(indexes))
			for j, k := range indexes {
				next[j] = row[k]
			}
			rows[i] = next
		}

		table.Columns = columns
		table.Rows = rows
		meta.Actions++

		result = ProjectResult{FileID: fileID, Columns: columns, Rows: len(rows)}
		return nil
	})
	if err != nil {
		return ProjectResult{}, mapStoreErr(err)
	}

	u.publishAction(fileID, entity.ActionProjectColumns,
		fmt.Sprintf("kept %d of the table's columns", len(result.Columns)), int64(len(result.Columns)))

	return result, nil
}
