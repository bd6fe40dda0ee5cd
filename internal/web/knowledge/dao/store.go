// Package dao is the data access object for the knowledge-base document store.
package dao

import (
	"context"
	"encoding/json"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Laisky/kb-refresh/internal/web/knowledge/model"
)

// chunkSize bounds one retrieval unit, in runes.
const chunkSize = 2000

// CategoryKnowledge marks documents ingested by the refresh pipeline.
const CategoryKnowledge = "knowledge"

// Store persists documents, chunks and folders for one or more agents.
type Store struct {
	db *gorm.DB
}

// NewStore creates a document store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// IngestOptions carries the optional attributes of one ingested document.
type IngestOptions struct {
	Metadata map[string]string
	FolderID *uuid.UUID
	Category string
}

// Ingest stores one document and its content chunks in a single transaction.
func (s *Store) Ingest(ctx context.Context, agentID, filename, mimeType string,
	size int64, content string, opts IngestOptions,
) (*model.Document, error) {
	metadata := ""
	if len(opts.Metadata) > 0 {
		encoded, err := json.Marshal(opts.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "encode metadata")
		}
		metadata = string(encoded)
	}

	doc := &model.Document{
		AgentID:  agentID,
		FolderID: opts.FolderID,
		Filename: filename,
		MimeType: mimeType,
		Size:     size,
		Category: opts.Category,
		Metadata: metadata,
		Content:  content,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return errors.Wrap(err, "create document")
		}

		for idx, chunk := range splitChunks(content) {
			record := &model.DocumentChunk{
				DocumentID: doc.ID,
				AgentID:    agentID,
				ChunkIndex: idx,
				Content:    chunk,
			}
			if err := tx.Create(record).Error; err != nil {
				return errors.Wrap(err, "create document chunk")
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return doc, nil
}

// DeleteDocument removes one document and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, agentID string, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agent_id = ? AND document_id = ?", agentID, id).
			Delete(&model.DocumentChunk{}).Error; err != nil {
			return errors.Wrap(err, "delete document chunks")
		}
		if err := tx.Where("agent_id = ? AND id = ?", agentID, id).
			Delete(&model.Document{}).Error; err != nil {
			return errors.Wrap(err, "delete document")
		}
		return nil
	})
}

// ClearAgent wholesale-deletes an agent's chunks, documents and folders, in
// that order. The refresh pipeline calls this only after the archive snapshot
// has been durably written.
func (s *Store) ClearAgent(ctx context.Context, agentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agent_id = ?", agentID).Delete(&model.DocumentChunk{}).Error; err != nil {
			return errors.Wrap(err, "clear document chunks")
		}
		if err := tx.Where("agent_id = ?", agentID).Delete(&model.Document{}).Error; err != nil {
			return errors.Wrap(err, "clear documents")
		}
		if err := tx.Where("agent_id = ?", agentID).Delete(&model.Folder{}).Error; err != nil {
			return errors.Wrap(err, "clear folders")
		}
		return nil
	})
}

// LookupFolder finds a folder by (agent, exact parent, name); nil when absent.
func (s *Store) LookupFolder(ctx context.Context, agentID string, parentID *uuid.UUID, name string) (*model.Folder, error) {
	query := s.db.WithContext(ctx).Where("agent_id = ? AND name = ?", agentID, name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var folder model.Folder
	if err := query.First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "lookup folder")
	}

	return &folder, nil
}

// CreateFolder inserts one folder row.
func (s *Store) CreateFolder(ctx context.Context, agentID string, parentID *uuid.UUID, name string) (*model.Folder, error) {
	folder := &model.Folder{
		AgentID:  agentID,
		ParentID: parentID,
		Name:     name,
	}
	if err := s.db.WithContext(ctx).Create(folder).Error; err != nil {
		return nil, errors.Wrap(err, "create folder")
	}

	return folder, nil
}

// ResolveFolderPath walks a slash-separated folder path top-down, creating
// missing folders, and returns the leaf folder id. An empty path resolves to
// nil (root).
func (s *Store) ResolveFolderPath(ctx context.Context, agentID, folderPath string) (*uuid.UUID, error) {
	var parentID *uuid.UUID
	for _, segment := range strings.Split(folderPath, "/") {
		name := strings.TrimSpace(segment)
		if name == "" {
			continue
		}

		folder, err := s.LookupFolder(ctx, agentID, parentID, name)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if folder == nil {
			if folder, err = s.CreateFolder(ctx, agentID, parentID, name); err != nil {
				return nil, errors.WithStack(err)
			}
		}

		id := folder.ID
		parentID = &id
	}

	return parentID, nil
}

// CountDocuments returns the number of documents stored for an agent.
func (s *Store) CountDocuments(ctx context.Context, agentID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("agent_id = ?", agentID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count documents")
	}

	return count, nil
}

// splitChunks cuts content into fixed-size rune windows.
func splitChunks(content string) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
