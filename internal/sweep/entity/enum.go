package entity

type FileFormat string

const (
	FileFormatCSV  FileFormat = "CSV"
	FileFormatXLSX FileFormat = "XLSX"
)

type ColumnKind string

const (
	ColumnKindNumeric ColumnKind = "NUMERIC"
	ColumnKindText    ColumnKind = "TEXT"
)

type ActionKind string

const (
	ActionRemoveDuplicates ActionKind = "REMOVE_DUPLICATES"
	ActionFillMissingMean  ActionKind = "FILL_MISSING_MEAN"
	ActionImputeMixed      ActionKind = "IMPUTE_MIXED"
	ActionProjectColumns   ActionKind = "PROJECT_COLUMNS"
	ActionExport           ActionKind = "EXPORT"
)

type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "CSV"
	ExportFormatExcel ExportFormat = "EXCEL"
)

// MIME returns the content type served with a download in this format.
func (f ExportFormat) MIME() string {
	switch f {
	case ExportFormatCSV:
		return "text/csv"
	case ExportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return ""
	}
}

// Extension returns the file extension (with dot) for this format.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatExcel:
		return ".xlsx"
	default:
		return ""
	}
}
