package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/cache"
	"github.com/eureka-edu/studybuddy/internal/ingest"
	"github.com/eureka-edu/studybuddy/internal/models"
	pgrepo "github.com/eureka-edu/studybuddy/internal/repositories/postgres"
	"github.com/eureka-edu/studybuddy/internal/storage"
	"github.com/eureka-edu/studybuddy/internal/tutor"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

const (
	maxUploadBytes  = 10 << 20
	studyContextTTL = 5 * time.Minute
)

type DocumentService interface {
	Upload(ctx context.Context, ownerID, fileName, mimeType string, data []byte) (*models.StudyDocument, error)
	List(ctx context.Context, ownerID string) ([]models.StudyDocument, error)
	ToggleSelect(ctx context.Context, ownerID, id string, selected bool) error
	Rename(ctx context.Context, ownerID, id, name string) error
	Delete(ctx context.Context, ownerID, id string) error

	// StudyContext assembles the selected documents into the tutor's
	// grounding block. The absent flag is false when no document is selected.
	StudyContext(ctx context.Context, ownerID string) (text string, present bool, err error)

	// AssignCopy clones a document into each target library as a locked,
	// pre-selected copy. Returns the number of copies created.
	AssignCopy(ctx context.Context, teacherID, documentID string, studentIDs []string) (int, error)
}

type documentService struct {
	repo     pgrepo.DocumentRepository
	extract  *ingest.Registry
	uploader storage.Uploader // nil disables raw-file archiving
	cache    cache.Cache
	log      *logrus.Logger
}

func NewDocumentService(repo pgrepo.DocumentRepository, extract *ingest.Registry, uploader storage.Uploader, c cache.Cache, log *logrus.Logger) DocumentService {
	return &documentService{repo: repo, extract: extract, uploader: uploader, cache: c, log: log}
}

func studyContextKey(ownerID string) string { return "studyctx:" + ownerID }

type cachedContext struct {
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

func (s *documentService) Upload(ctx context.Context, ownerID, fileName, mimeType string, data []byte) (*models.StudyDocument, error) {
	const op = "DocumentService.Upload"

	fileName = strings.TrimSpace(fileName)
	if ownerID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id and file name are required", nil)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil)
	}
	if len(data) > maxUploadBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file exceeds the 10MB limit", nil)
	}
	if !s.extract.Supported(fileName) {
		return nil, utils.E(utils.CodeUnsupported, op, "unsupported file format", ingest.ErrUnsupportedFormat)
	}

	content, err := s.extract.Extract(fileName, data)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			return nil, utils.E(utils.CodeUnsupported, op, "unsupported file format", err)
		}
		return nil, utils.E(utils.CodeInvalidArgument, op, "failed to extract text from file", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file contains no extractable text", nil)
	}

	doc := &models.StudyDocument{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      fileName,
		FileType:  strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."),
		Content:   content,
		Selected:  true,
		FileSize:  len(data),
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	}

	if s.uploader != nil {
		objectName := fmt.Sprintf("documents/%s/%s%s", ownerID, doc.ID, filepath.Ext(fileName))
		path, err := s.uploader.Upload(ctx, objectName, mimeType, bytes.NewReader(data))
		if err != nil {
			// Archiving is best effort; the extracted text is the source of truth.
			s.log.WithError(err).WithField("object", objectName).Warn("document archive upload failed")
		} else {
			doc.ObjectPath = path
		}
	}

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist document", err)
	}

	s.invalidate(ctx, ownerID)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, ownerID string) ([]models.StudyDocument, error) {
	const op = "DocumentService.List"

	if ownerID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id is required", nil)
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list documents", err)
	}
	return rows, nil
}

func (s *documentService) ToggleSelect(ctx context.Context, ownerID, id string, selected bool) error {
	const op = "DocumentService.ToggleSelect"

	if _, err := s.owned(ctx, op, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.SetSelected(ctx, id, selected); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update selection", err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *documentService) Rename(ctx context.Context, ownerID, id, name string) error {
	const op = "DocumentService.Rename"

	name = strings.TrimSpace(name)
	if name == "" {
		return utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}

	doc, err := s.owned(ctx, op, ownerID, id)
	if err != nil {
		return err
	}
	if doc.Locked {
		return utils.E(utils.CodeForbidden, op, "assigned documents cannot be renamed", nil)
	}

	if err := s.repo.Rename(ctx, id, name); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to rename document", err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	const op = "DocumentService.Delete"

	doc, err := s.owned(ctx, op, ownerID, id)
	if err != nil {
		return err
	}
	if doc.Locked {
		return utils.E(utils.CodeForbidden, op, "assigned documents cannot be deleted", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete document", err)
	}

	if s.uploader != nil && doc.ObjectPath != "" {
		if err := s.uploader.Delete(ctx, doc.ObjectPath); err != nil {
			s.log.WithError(err).WithField("object", doc.ObjectPath).Warn("document archive delete failed")
		}
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *documentService) StudyContext(ctx context.Context, ownerID string) (string, bool, error) {
	const op = "DocumentService.StudyContext"

	if ownerID == "" {
		return "", false, utils.E(utils.CodeInvalidArgument, op, "owner_id is required", nil)
	}

	if s.cache != nil {
		var cached cachedContext
		if hit, err := s.cache.GetJSON(ctx, studyContextKey(ownerID), &cached); err == nil && hit {
			return cached.Text, cached.Present, nil
		}
	}

	docs, err := s.repo.ListSelected(ctx, ownerID)
	if err != nil {
		return "", false, utils.E(utils.CodeInternal, op, "failed to load selected documents", err)
	}

	text, present := tutor.AssembleContext(docs)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, studyContextKey(ownerID), cachedContext{Text: text, Present: present}, studyContextTTL); err != nil {
			s.log.WithError(err).Warn("study context cache write failed")
		}
	}
	return text, present, nil
}

func (s *documentService) AssignCopy(ctx context.Context, teacherID, documentID string, studentIDs []string) (int, error) {
	const op = "DocumentService.AssignCopy"

	src, err := s.owned(ctx, op, teacherID, documentID)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, sid := range studentIDs {
		dup := &models.StudyDocument{
			ID:         uuid.NewString(),
			OwnerID:    sid,
			Name:       src.Name,
			FileType:   src.FileType,
			Content:    src.Content,
			Selected:   true,
			Locked:     true,
			AssignedBy: teacherID,
			ObjectPath: src.ObjectPath,
			FileSize:   src.FileSize,
			MimeType:   src.MimeType,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, dup); err != nil {
			return assigned, utils.E(utils.CodeInternal, op, "failed to assign document", err)
		}
		s.invalidate(ctx, sid)
		assigned++
	}
	return assigned, nil
}

func (s *documentService) owned(ctx context.Context, op, ownerID, id string) (*models.StudyDocument, error) {
	if ownerID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id and document id are required", nil)
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "document not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get document", err)
	}
	if doc.OwnerID != ownerID {
		return nil, utils.E(utils.CodeForbidden, op, "document belongs to another user", nil)
	}
	return doc, nil
}

func (s *documentService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, studyContextKey(ownerID)); err != nil {
		s.log.WithError(err).Warn("study context cache invalidation failed")
	}
}
