package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestBuild verifies manifest.json is the first entry and documents follow in order.
func TestBuild(t *testing.T) {
	manifest := Manifest{
		AgentID:   "agent-1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CommitSHA: "abc123",
		FileCount: 2,
		Files: []ManifestFile{
			{Filename: "a.md", OriginalPath: "canton/modules/ROOT/pages/a.adoc"},
			{Filename: "b.md", OriginalPath: "canton/modules/ROOT/pages/b.adoc"},
		},
	}
	entries := []Entry{
		{Filename: "a.md", Content: "# A\n"},
		{Filename: "b.md", Content: "# B\n"},
	}

	data, err := Build(manifest, entries)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	require.Equal(t, "manifest.json", zr.File[0].Name)
	require.Equal(t, "a.md", zr.File[1].Name)
	require.Equal(t, "b.md", zr.File[2].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	manifestBytes, err := io.ReadAll(rc)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(manifestBytes, &decoded))
	require.Equal(t, "agent-1", decoded.AgentID)
	require.Equal(t, "abc123", decoded.CommitSHA)
	require.Equal(t, 2, decoded.FileCount)
	require.Len(t, decoded.Files, 2)

	rc2, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc2.Close()
	content, err := io.ReadAll(rc2)
	require.NoError(t, err)
	require.Equal(t, "# A\n", string(content))
}

// TestKey verifies the tenant/timestamp key convention.
func TestKey(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
	require.Equal(t, "agent-1/20260301T123045Z.zip", Key("agent-1", ts))
}

// TestFSStorePut verifies local snapshots land under the root directory.
func TestFSStorePut(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir)

	location, err := store.Put(context.Background(), "agent-1/snap.zip", []byte("zipdata"))
	require.NoError(t, err)

	written, err := os.ReadFile(location)
	require.NoError(t, err)
	require.Equal(t, "zipdata", string(written))
}
