package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/filestore"
	"github.com/docvault/docvault/internal/model"
	"github.com/docvault/docvault/internal/repo"
)

type ExportService struct {
	docs  *repo.DocumentRepo
	store filestore.Store
}

func NewExportService(docs *repo.DocumentRepo, store filestore.Store) *ExportService {
	return &ExportService{docs: docs, store: store}
}

type exportArchive struct {
	ExportedAt int64            `json:"exported_at"`
	Count      int              `json:"count"`
	Documents  []model.Document `json:"documents"`
}

// Snapshot serializes every document (payload included) and writes the
// archive to the configured file store. Returns the archive key.
func (s *ExportService) Snapshot(ctx context.Context) (string, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now()
	archive := exportArchive{
		ExportedAt: now.Unix(),
		Count:      len(docs),
		Documents:  docs,
	}
	data, err := json.Marshal(archive)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("docvault-backup-%s.json", now.UTC().Format("20060102T150405Z"))
	if err := s.store.Save(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return key, nil
}
