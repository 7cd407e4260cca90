package entity

// Column is a named, typed column of a Table. The kind is assigned once at
// ingestion and respected by every downstream stage.
type Column struct {
	Name string
	Kind ColumnKind
}

// Cell is a single table value. Missing cells keep an empty Value.
type Cell struct {
	Value   string
	Missing bool
}

// Table is a rectangular in-memory dataset: every row has exactly one cell per
// column, in column order.
type Table struct {
	Columns []Column
	Rows    [][]Cell
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so snapshots can leave the store's lock.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}

	clone := &Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	copy(clone.Columns, t.Columns)
	for i, row := range t.Rows {
		clone.Rows[i] = make([]Cell, len(row))
		copy(clone.Rows[i], row)
	}

	return clone
}
