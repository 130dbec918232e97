package service

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/model"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
	"github.com/docvault/docvault/internal/pkg/timeutil"
	"github.com/docvault/docvault/internal/repo"
)

var documentCategories = map[string]struct{}{
	"education": {},
	"identity":  {},
	"health":    {},
	"railway":   {},
	"others":    {},
}

type DocumentService struct {
	docs       *repo.DocumentRepo
	recipients *repo.ShareRecipientRepo
	upload     config.UploadConfig
}

func NewDocumentService(docs *repo.DocumentRepo, recipients *repo.ShareRecipientRepo, upload config.UploadConfig) *DocumentService {
	return &DocumentService{docs: docs, recipients: recipients, upload: upload}
}

type FileInput struct {
	Name string
	Type string
	Size int64
	Data []byte
}

type DocumentCreateInput struct {
	Title       string
	Category    string
	Description string
	File        *FileInput
}

type DocumentUpdateInput struct {
	Title       string
	Category    string
	Description *string
	File        *FileInput
}

func (s *DocumentService) validateFile(file *FileInput) error {
	if file.Size <= 0 || int64(len(file.Data)) == 0 {
		return appErr.ErrInvalid
	}
	if s.upload.MaxSizeBytes > 0 && int64(len(file.Data)) > s.upload.MaxSizeBytes {
		return appErr.ErrInvalid
	}
	for _, allowed := range s.upload.AllowedTypes {
		if strings.EqualFold(allowed, file.Type) {
			return nil
		}
	}
	return appErr.ErrInvalid
}

func (s *DocumentService) Create(ctx context.Context, userID string, input DocumentCreateInput) (*model.Document, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(strings.ToLower(input.Category))
	if input.Title == "" || input.File == nil {
		return nil, appErr.ErrInvalid
	}
	if _, ok := documentCategories[input.Category]; !ok {
		return nil, appErr.ErrInvalid
	}
	if err := s.validateFile(input.File); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	doc := &model.Document{
		ID:          newID(),
		UserID:      userID,
		Title:       input.Title,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		FileName:    input.File.Name,
		FileType:    input.File.Type,
		FileSize:    int64(len(input.File.Data)),
		FileData:    base64.StdEncoding.EncodeToString(input.File.Data),
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("user_id", userID),
		zap.Int64("size", doc.FileSize))
	doc.FileData = ""
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, userID, category, search string) ([]model.Document, error) {
	category = strings.TrimSpace(strings.ToLower(category))
	if category != "" && category != "all" {
		if _, ok := documentCategories[category]; !ok {
			return nil, appErr.ErrInvalid
		}
	}
	return s.docs.List(ctx, userID, category, strings.TrimSpace(search))
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, appErr.ErrForbidden
	}
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, userID, docID string, input DocumentUpdateInput) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, appErr.ErrForbidden
	}
	update := map[string]interface{}{"mtime": timeutil.NowUnix()}
	if title := strings.TrimSpace(input.Title); title != "" {
		update["title"] = title
	}
	if category := strings.TrimSpace(strings.ToLower(input.Category)); category != "" {
		if _, ok := documentCategories[category]; !ok {
			return nil, appErr.ErrInvalid
		}
		update["category"] = category
	}
	if input.Description != nil {
		update["description"] = strings.TrimSpace(*input.Description)
	}
	if input.File != nil {
		if err := s.validateFile(input.File); err != nil {
			return nil, err
		}
		update["file_name"] = input.File.Name
		update["file_type"] = input.File.Type
		update["file_size"] = int64(len(input.File.Data))
		update["file_data"] = base64.StdEncoding.EncodeToString(input.File.Data)
	}
	if err := s.docs.Update(ctx, docID, update); err != nil {
		return nil, err
	}
	updated, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	updated.FileData = ""
	return updated, nil
}

// Delete destroys the document; any active grant dies with the row.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return appErr.ErrForbidden
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		return err
	}
	return s.recipients.Clear(ctx, docID)
}
