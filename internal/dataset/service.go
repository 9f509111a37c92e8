package dataset

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/table"
	"datalens/internal/errors"
)

// Repository is the metadata store the service persists through
type Repository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error)
	ListByUser(ctx context.Context, userID core.ID, offset, limit int) ([]*dataset.Dataset, error)
	ListAllByUser(ctx context.Context, userID core.ID) ([]*dataset.Dataset, error)
	UpdateFilename(ctx context.Context, id core.ID, filename string) error
	Delete(ctx context.Context, id core.ID) error
}

// Preview page bounds enforced regardless of what the caller asks for
const (
	DefaultPreviewRows = 10
	MaxPreviewRows     = 100
	DefaultListLimit   = 100
	MaxListLimit       = 500
)

// Service is the dataset registry: upload, ownership resolution,
// preview and lifecycle of uploaded files.
type Service struct {
	repo    Repository
	storage *LocalFileStorage
}

// NewService creates a dataset service
func NewService(repo Repository, storage *LocalFileStorage) *Service {
	return &Service{repo: repo, storage: storage}
}

// Upload validates, stores and parses one uploaded file, recording
// row/column counts in the metadata. A file that stores fine but does
// not parse is removed again so the registry never references
// unreadable data.
func (s *Service) Upload(ctx context.Context, userID core.ID, originalFilename string, declaredSize int64, r io.Reader) (*dataset.Dataset, error) {
	if err := s.storage.Validate(originalFilename, declaredSize); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	format, ok := dataset.FormatFromExtension(ext)
	if !ok {
		return nil, errors.InvalidFileType(s.storage.AllowedExtensions())
	}

	storedName, path, size, err := s.storage.Store(originalFilename, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tbl, err := tabular.Load(path, format)
	if err != nil {
		if cleanupErr := s.storage.Delete(path); cleanupErr != nil {
			log.Printf("[Dataset] cleanup of unparseable upload %s failed: %v", path, cleanupErr)
		}
		return nil, err
	}

	ds := &dataset.Dataset{
		ID:               core.NewID(),
		UserID:           userID,
		Filename:         originalFilename,
		OriginalFilename: originalFilename,
		FileType:         format,
		FilePath:         path,
		FileSize:         size,
		RowCount:         tbl.RowCount(),
		ColumnCount:      tbl.ColumnCount(),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := s.repo.Create(ctx, ds); err != nil {
		if cleanupErr := s.storage.Delete(path); cleanupErr != nil {
			log.Printf("[Dataset] cleanup of orphaned upload %s failed: %v", path, cleanupErr)
		}
		return nil, err
	}

	log.Printf("[Dataset] stored %s as %s (%d rows, %d columns, %d bytes) in %.2fms",
		originalFilename, storedName, ds.RowCount, ds.ColumnCount, size,
		float64(time.Since(start).Microseconds())/1000)
	return ds, nil
}

// Resolve fetches a dataset and enforces ownership. A dataset owned
// by someone else is forbidden, not hidden.
func (s *Service) Resolve(ctx context.Context, id core.ID, userID core.ID) (*dataset.Dataset, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ds.UserID != userID {
		return nil, errors.Forbidden("dataset belongs to another user")
	}
	return ds, nil
}

// LoadTable resolves ownership and parses the backing file
func (s *Service) LoadTable(ctx context.Context, id core.ID, userID core.ID) (*table.Table, error) {
	ds, err := s.Resolve(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return tabular.Load(ds.FilePath, ds.FileType)
}

// List returns a bounded page of the user's datasets
func (s *Service) List(ctx context.Context, userID core.ID, offset, limit int) ([]*dataset.Dataset, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

// Rename updates the display filename. This is the only mutable
// dataset field; anything else in an update payload is rejected at
// the boundary.
func (s *Service) Rename(ctx context.Context, id core.ID, userID core.ID, filename string) (*dataset.Dataset, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.ValidationError("filename must not be empty")
	}
	ds, err := s.Resolve(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFilename(ctx, id, filename); err != nil {
		return nil, err
	}
	ds.Filename = filename
	ds.UpdatedAt = time.Now()
	return ds, nil
}

// Delete removes the metadata row and the stored file
func (s *Service) Delete(ctx context.Context, id core.ID, userID core.ID) error {
	ds, err := s.Resolve(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ds.FilePath); err != nil {
		log.Printf("[Dataset] file removal for %s failed: %v", ds.ID, err)
	}
	return nil
}

// DeleteAllForUser removes every dataset the user owns, files
// included. Used when the account itself is deleted.
func (s *Service) DeleteAllForUser(ctx context.Context, userID core.ID) error {
	datasets, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, ds := range datasets {
		if err := s.repo.Delete(ctx, ds.ID); err != nil {
			return err
		}
		if err := s.storage.Delete(ds.FilePath); err != nil {
			log.Printf("[Dataset] file removal for %s failed: %v", ds.ID, err)
		}
	}
	return nil
}

// Preview returns the first rows of the parsed table as records in
// column order, capped to keep payloads bounded
func (s *Service) Preview(ctx context.Context, id core.ID, userID core.ID, rows int) (map[string]interface{}, error) {
	if rows <= 0 {
		rows = DefaultPreviewRows
	}
	if rows > MaxPreviewRows {
		rows = MaxPreviewRows
	}

	tbl, err := s.LoadTable(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	total := tbl.RowCount()
	if rows > total {
		rows = total
	}
	records := make([]map[string]interface{}, rows)
	for r := 0; r < rows; r++ {
		record := make(map[string]interface{}, tbl.ColumnCount())
		for c := range tbl.Columns {
			col := &tbl.Columns[c]
			if r < len(col.Values) {
				record[col.Name] = col.Values[r].Raw()
			} else {
				record[col.Name] = nil
			}
		}
		records[r] = record
	}

	return map[string]interface{}{
		"columns":    tbl.ColumnNames(),
		"rows":       records,
		"total_rows": total,
	}, nil
}
