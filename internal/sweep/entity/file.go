package entity

type FileMeta struct {
	ID         string
	Name       string
	Size       int64
	Format     FileFormat
	UploadedAt int64

	// Ingestion stats help observability without keeping the raw bytes
	TotalRows   int64
	ParsedOK    int64
	SkippedRows int64

	// Actions counts committed mutations (cleaning, projection)
	Actions int64
}
