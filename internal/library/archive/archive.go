// Package archive builds durable zip snapshots of one refresh run.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/json"
	"fmt"
	"io"
	"time"

	errors "github.com/Laisky/errors/v2"
)

// ManifestFile pairs a converted output filename with its original repository path.
type ManifestFile struct {
	Filename     string `json:"filename"`
	OriginalPath string `json:"originalPath"`
}

// Manifest is the first entry of every snapshot, `manifest.json`.
type Manifest struct {
	AgentID   string         `json:"agentId"`
	Timestamp time.Time      `json:"timestamp"`
	CommitSHA string         `json:"commitSha"`
	FileCount int            `json:"fileCount"`
	Files     []ManifestFile `json:"files"`
}

// Entry is one converted document stored in the snapshot.
type Entry struct {
	Filename string
	Content  string
}

// Build produces a zip snapshot at maximum compression: manifest.json first,
// then one entry per converted document.
func Build(manifest Manifest, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal manifest")
	}

	if err = writeEntry(zw, "manifest.json", manifestBytes); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, entry := range entries {
		if err = writeEntry(zw, entry.Filename, []byte(entry.Content)); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if err = zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close zip writer")
	}

	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrapf(err, "create zip entry %q", name)
	}

	if _, err = w.Write(content); err != nil {
		return errors.Wrapf(err, "write zip entry %q", name)
	}

	return nil
}

// Key builds the tenant- and timestamp-scoped storage key for one snapshot.
func Key(agentID string, ts time.Time) string {
	return fmt.Sprintf("%s/%s.zip", agentID, ts.UTC().Format("20060102T150405Z"))
}
