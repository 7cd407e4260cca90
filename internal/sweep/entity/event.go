package entity

// ActionEvent records one committed user action against a file session. Events
// flow through the in-process bus into the session's action history.
type ActionEvent struct {
	EventID  string
	FileID   string
	Kind     ActionKind
	Detail   string
	Affected int64
	At       int64
}
