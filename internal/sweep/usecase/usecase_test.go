package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

type fileState struct {
	meta  entity.FileMeta
	table *entity.Table
}

type testStore struct {
	mu      sync.RWMutex
	files   map[string]fileState
	history map[string][]entity.ActionEvent
}

func newTestStore() *testStore {
	return &testStore{
		files:   make(map[string]fileState),
		history: make(map[string][]entity.ActionEvent),
	}
}

func (s *testStore) CreateFile(ctx context.Context, meta entity.FileMeta, table *entity.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[meta.ID]; ok {
		return pkgerror.NewBusiness("file already exists", pkgerror.CodeConflict)
	}
	s.files[meta.ID] = fileState{meta: meta, table: table}
	return nil
}

func (s *testStore) GetFile(ctx context.Context, fileID string) (entity.FileMeta, *entity.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.files[fileID]
	if !ok {
		return entity.FileMeta{}, nil, pkgerror.ErrNotFound
	}
	return state.meta, state.table.Clone(), nil
}

func (s *testStore) ListFiles(ctx context.Context) ([]entity.FileMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metas := make([]entity.FileMeta, 0, len(s.files))
	for _, state := range s.files {
		metas = append(metas, state.meta)
	}
	return metas, nil
}

func (s *testStore) UpdateTable(ctx context.Context, fileID string, fn func(meta *entity.FileMeta, table *entity.Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.files[fileID]
	if !ok {
		return pkgerror.ErrNotFound
	}

	meta := state.meta
	table := state.table.Clone()
	if err := fn(&meta, table); err != nil {
		return err
	}

	s.files[fileID] = fileState{meta: meta, table: table}
	return nil
}

func (s *testStore) DeleteFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[fileID]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.files, fileID)
	delete(s.history, fileID)
	return nil
}

func (s *testStore) ListHistory(ctx context.Context, fileID string) ([]entity.ActionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.files[fileID]; !ok {
		return nil, pkgerror.ErrNotFound
	}
	return s.history[fileID], nil
}

func (s *testStore) table(t *testing.T, fileID string) *entity.Table {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.files[fileID]
	if !ok {
		t.Fatalf("file %q not in store", fileID)
	}
	return state.table
}

type testPublisher struct {
	mu     sync.Mutex
	events []entity.ActionEvent
}

func (p *testPublisher) Publish(ctx context.Context, event entity.ActionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *testPublisher) all() []entity.ActionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.ActionEvent(nil), p.events...)
}

type testID struct {
	mu sync.Mutex
	n  int
}

func (t *testID) Generate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return fmt.Sprintf("id-%d", t.n)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestUsecase(limits Limits) (*Usecase, *testStore, *testPublisher) {
	storage := newTestStore()
	publisher := &testPublisher{}

	uc := New(Dependency{
		Store:   storage,
		Events:  publisher,
		Clock:   fixedClock{now: time.Unix(1700000000, 0)},
		ID:      &testID{},
		Limits:  limits,
		RootCtx: context.Background(),
	})

	return uc, storage, publisher
}

func cell(value string) entity.Cell {
	return entity.Cell{Value: value}
}

func missing() entity.Cell {
	return entity.Cell{Missing: true}
}

func seedFile(t *testing.T, storage *testStore, fileID string, table *entity.Table) {
	t.Helper()

	meta := entity.FileMeta{
		ID:     fileID,
		Name:   fileID + ".csv",
		Format: entity.FileFormatCSV,
	}
	if err := storage.CreateFile(context.Background(), meta, table); err != nil {
		t.Fatalf("seed file: %v", err)
	}
}

func numericTable() *entity.Table {
	return &entity.Table{
		Columns: []entity.Column{
			{Name: "a", Kind: entity.ColumnKindNumeric},
			{Name: "b", Kind: entity.ColumnKindNumeric},
		},
		Rows: [][]entity.Cell{
			{cell("1"), cell("2")},
			{cell("1"), cell("2")},
			{cell("3"), missing()},
		},
	}
}

func TestDetailClampsPreview(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{PreviewRows: 2, MaxPreviewRows: 3})
	seedFile(t, storage, "f1", numericTable())

	result, err := uc.Detail(context.Background(), "f1", 0)
	if err != nil {
		t.Fatalf("detail with default rows: %v", err)
	}
	if len(result.Preview) != 2 {
		t.Fatalf("expected default preview of 2 rows, got %d", len(result.Preview))
	}

	result, err = uc.Detail(context.Background(), "f1", 50)
	if err != nil {
		t.Fatalf("detail with oversized rows: %v", err)
	}
	if len(result.Preview) != 3 {
		t.Fatalf("expected preview capped at 3 rows, got %d", len(result.Preview))
	}
}

func TestDetailNotFound(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	_, err := uc.Detail(context.Background(), "ghost", 0)

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if perr.Code() != pkgerror.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", perr.Code())
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	t.Parallel()

	uc, storage, _ := newTestUsecase(Limits{})
	seedFile(t, storage, "f1", numericTable())

	if err := uc.Delete(context.Background(), "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := uc.Detail(context.Background(), "f1", 0); err == nil {
		t.Fatal("expected not-found after delete")
	}
	if err := uc.Delete(context.Background(), "f1"); err == nil {
		t.Fatal("expected not-found on second delete")
	}
}

func TestListEmpty(t *testing.T) {
	t.Parallel()

	uc, _, _ := newTestUsecase(Limits{})

	metas, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("expected no files, got %d", len(metas))
	}
}
