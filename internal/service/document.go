package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"compliance-tracker/internal/apperr"
	"compliance-tracker/internal/model"

	"gorm.io/gorm"
)

// DocumentService keeps attachment metadata in the database and the files
// themselves on disk under the configured uploads directory.
type DocumentService struct {
	db  *gorm.DB
	dir string
}

func NewDocumentService(db *gorm.DB, dir string) (*DocumentService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %q: %w", dir, err)
	}
	return &DocumentService{db: db, dir: dir}, nil
}

// StoredName returns the on-disk path for a new upload. Names are prefixed
// with a nanosecond timestamp so originals never collide.
func (s *DocumentService) StoredName(fileName string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileName)))
}

func (s *DocumentService) Attach(ctx context.Context, p model.Principal, taskID int, doc model.Document) (*model.Document, error) {
	// Task must exist in the caller's business and be visible to them.
	var task model.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", taskID, p.BusinessID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: task", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if !p.IsOwner() && (task.AssignedTo == nil || *task.AssignedTo != p.UserID) {
		return nil, fmt.Errorf("%w: task is not assigned to you", apperr.ErrForbidden)
	}

	doc.BusinessID = p.BusinessID
	doc.TaskID = &taskID
	doc.UploadedBy = p.UserID
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentService) ListByTask(ctx context.Context, p model.Principal, taskID int) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND task_id = ?", p.BusinessID, taskID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, p model.Principal, docID int) (*model.Document, error) {
	var doc model.Document
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", docID, p.BusinessID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: document", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// Delete removes the metadata row and the file. Owner-only; the handler
// enforces the role.
func (s *DocumentService) Delete(ctx context.Context, businessID, docID int) error {
	var doc model.Document
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", docID, businessID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: document", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&doc).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if doc.StoredPath != "" {
		os.Remove(doc.StoredPath)
	}
	return nil
}
