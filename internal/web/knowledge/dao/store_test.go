package dao

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Laisky/kb-refresh/internal/web/knowledge/model"
)

// newTestStore creates a store over an in-memory sqlite database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, model.RunMigrations(context.Background(), db))

	return NewStore(db)
}

// TestIngestAndDelete verifies a document lands with its chunks and is
// removed together with them.
func TestIngestAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	content := strings.Repeat("x", chunkSize+10)
	doc, err := store.Ingest(ctx, "agent-1", "intro.md", "text/markdown",
		int64(len(content)), content, IngestOptions{
			Category: CategoryKnowledge,
			Metadata: map[string]string{"originalPath": "canton/intro.adoc"},
		})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.Contains(t, doc.Metadata, "canton/intro.adoc")

	var chunks []model.DocumentChunk
	require.NoError(t, store.db.Where("document_id = ?", doc.ID).Order("chunk_index").Find(&chunks).Error)
	require.Len(t, chunks, 2)
	require.Len(t, chunks[0].Content, chunkSize)
	require.Len(t, chunks[1].Content, 10)

	require.NoError(t, store.DeleteDocument(ctx, "agent-1", doc.ID))

	count, err := store.CountDocuments(ctx, "agent-1")
	require.NoError(t, err)
	require.Zero(t, count)
	require.NoError(t, store.db.Where("document_id = ?", doc.ID).Find(&chunks).Error)
	require.Empty(t, chunks)
}

// TestResolveFolderPath verifies top-down creation, reuse across calls, and
// same-name folders at different depths.
func TestResolveFolderPath(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.ResolveFolderPath(ctx, "agent-1", "canton/validator-mgmt")
	require.NoError(t, err)
	require.NotNil(t, first)

	// second resolution of the same path reuses the rows
	second, err := store.ResolveFolderPath(ctx, "agent-1", "canton/validator-mgmt")
	require.NoError(t, err)
	require.Equal(t, *first, *second)

	var count int64
	require.NoError(t, store.db.Model(&model.Folder{}).Where("agent_id = ?", "agent-1").Count(&count).Error)
	require.EqualValues(t, 2, count)

	// same leaf name under a different parent is a distinct folder
	other, err := store.ResolveFolderPath(ctx, "agent-1", "splice/validator-mgmt")
	require.NoError(t, err)
	require.NotEqual(t, *first, *other)

	// empty path resolves to root
	root, err := store.ResolveFolderPath(ctx, "agent-1", "")
	require.NoError(t, err)
	require.Nil(t, root)
}

// TestClearAgent verifies wholesale deletion is scoped to one agent.
func TestClearAgent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	folderID, err := store.ResolveFolderPath(ctx, "agent-1", "canton")
	require.NoError(t, err)
	_, err = store.Ingest(ctx, "agent-1", "a.md", "text/markdown", 3, "# A", IngestOptions{FolderID: folderID})
	require.NoError(t, err)
	_, err = store.Ingest(ctx, "agent-2", "b.md", "text/markdown", 3, "# B", IngestOptions{})
	require.NoError(t, err)

	require.NoError(t, store.ClearAgent(ctx, "agent-1"))

	count, err := store.CountDocuments(ctx, "agent-1")
	require.NoError(t, err)
	require.Zero(t, count)

	var folders int64
	require.NoError(t, store.db.Model(&model.Folder{}).Where("agent_id = ?", "agent-1").Count(&folders).Error)
	require.Zero(t, folders)

	// the other agent is untouched
	count, err = store.CountDocuments(ctx, "agent-2")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

// TestSplitChunks covers boundary cases of the chunker.
func TestSplitChunks(t *testing.T) {
	require.Nil(t, splitChunks(""))
	require.Equal(t, []string{"abc"}, splitChunks("abc"))

	exact := strings.Repeat("y", chunkSize)
	require.Equal(t, []string{exact}, splitChunks(exact))
}
