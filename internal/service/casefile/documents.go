package casefile

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/service/media"
)

func (s *service) AddDocument(ctx context.Context, actor domain.Actor, id uuid.UUID, file domain.FileUpload) (*domain.Document, error) {
	if file.Reader == nil || file.Size <= 0 {
		return nil, domain.ValidationFailed("file is required")
	}

	cf, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !cf.IsEditable() {
		return nil, domain.InvalidState("documents can only be added to case files in draft or rejected status")
	}
	if !canEdit(actor, cf) {
		return nil, domain.Forbidden("you cannot add documents to this case file")
	}

	key, err := s.storage.Put(ctx, media.DocumentPrefix, file)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:         uuid.New(),
		CaseFileID: cf.ID,
		FileName:   filepath.Base(file.FileName),
		FileSize:   file.Size,
		MimeType:   file.ContentType,
		StorageKey: key,
		UploadedBy: actor.ID,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
			log.Printf("failed to remove orphaned object %s: %v", key, rmErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	doc.URL, _ = s.storage.URL(ctx, key)

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditUpload,
		EntityType: domain.EntityDocument,
		EntityID:   doc.ID,
		NewValues:  map[string]interface{}{"case_file_id": cf.ID, "file_name": doc.FileName, "file_size": doc.FileSize},
	})

	return doc, nil
}

func (s *service) ListDocuments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Document, error) {
	cf, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByCaseFile(ctx, cf.ID)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, docs), nil
}

func (s *service) RemoveDocument(ctx context.Context, actor domain.Actor, id, documentID uuid.UUID) error {
	cf, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil || doc.CaseFileID != cf.ID {
		return domain.NotFound("document not found")
	}
	if !cf.IsEditable() {
		return domain.InvalidState("documents can only be removed from case files in draft or rejected status")
	}
	if !canEdit(actor, cf) {
		return domain.Forbidden("you cannot remove documents from this case file")
	}

	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.storage.Remove(ctx, doc.StorageKey); err != nil {
		log.Printf("failed to remove stored object of document %s: %v", doc.ID, err)
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditDelete,
		EntityType: domain.EntityDocument,
		EntityID:   doc.ID,
		OldValues:  doc,
	})

	return nil
}

func (s *service) withURLs(ctx context.Context, docs []domain.Document) []domain.Document {
	if docs == nil {
		return []domain.Document{}
	}
	for i := range docs {
		url, err := s.storage.URL(ctx, docs[i].StorageKey)
		if err != nil {
			log.Printf("failed to build URL for document %s: %v", docs[i].ID, err)
			continue
		}
		docs[i].URL = url
	}
	return docs
}
