package store

import (
	"context"
	"sort"
	"sync"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

// maxHistoryPerFile bounds the action trail kept for one session.
const maxHistoryPerFile = 100

type InMemoryStore struct {
	mu    sync.RWMutex
	files map[string]*fileRecord
}

type fileRecord struct {
	mu      sync.RWMutex
	meta    entity.FileMeta
	table   *entity.Table
	history []entity.ActionEvent
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		files: make(map[string]*fileRecord),
	}
}

func (s *InMemoryStore) CreateFile(ctx context.Context, meta entity.FileMeta, table *entity.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[meta.ID]; exists {
		return pkgerror.NewBusiness("file already exists", pkgerror.CodeConflict)
	}

	s.files[meta.ID] = &fileRecord{
		meta:  meta,
		table: table,
	}

	return nil
}

// GetFile returns the metadata and a deep copy of the table, so readers can
// work outside the record's lock.
func (s *InMemoryStore) GetFile(ctx context.Context, fileID string) (entity.FileMeta, *entity.Table, error) {
	rec, err := s.get(fileID)
	if err != nil {
		return entity.FileMeta{}, nil, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return rec.meta, rec.table.Clone(), nil
}

func (s *InMemoryStore) ListFiles(ctx context.Context) ([]entity.FileMeta, error) {
	s.mu.RLock()
	records := make([]*fileRecord, 0, len(s.files))
	for _, rec := range s.files {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	metas := make([]entity.FileMeta, 0, len(records))
	for _, rec := range records {
		rec.mu.RLock()
		metas = append(metas, rec.meta)
		rec.mu.RUnlock()
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].UploadedAt != metas[j].UploadedAt {
			return metas[i].UploadedAt < metas[j].UploadedAt
		}
		return metas[i].ID < metas[j].ID
	})

	return metas, nil
}

// UpdateTable runs fn against a working copy under the record's lock and
// commits only when fn succeeds, so a failed action leaves the table as it
// was.
func (s *InMemoryStore) UpdateTable(ctx context.Context, fileID string, fn func(meta *entity.FileMeta, table *entity.Table) error) error {
	rec, err := s.get(fileID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	meta := rec.meta
	table := rec.table.Clone()
	if err := fn(&meta, table); err != nil {
		return err
	}

	rec.meta = meta
	rec.table = table

	return nil
}

func (s *InMemoryStore) DeleteFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[fileID]; !ok {
		return pkgerror.ErrNotFound
	}

	delete(s.files, fileID)
	return nil
}

func (s *InMemoryStore) AppendHistory(ctx context.Context, fileID string, event entity.ActionEvent) error {
	rec, err := s.get(fileID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.history = append(rec.history, event)
	if len(rec.history) > maxHistoryPerFile {
		rec.history = rec.history[len(rec.history)-maxHistoryPerFile:]
	}

	return nil
}

func (s *InMemoryStore) ListHistory(ctx context.Context, fileID string) ([]entity.ActionEvent, error) {
	rec, err := s.get(fileID)
	if err != nil {
		return nil, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	events := make([]entity.ActionEvent, len(rec.history))
	copy(events, rec.history)

	return events, nil
}

func (s *InMemoryStore) get(fileID string) (*fileRecord, error) {
	s.mu.RLock()
	rec, ok := s.files[fileID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
