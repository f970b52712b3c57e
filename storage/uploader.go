// Package storage archives seed snapshots to S3-compatible object storage
// (Cloudflare R2 in production). Archival is best effort: the database row is
// the source of truth, the object copy exists for export and post-mortems.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/orya-live/padel-engine/models"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// SnapshotArchiver writes seed snapshots as JSON objects.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

// Archive uploads the snapshot and returns its public URL.
func (a *SnapshotArchiver) Archive(ctx context.Context, snapshot *models.SeedSnapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot %d: %w", snapshot.ID, err)
	}
	key := SnapshotKey(snapshot)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// SnapshotKey is the object key layout: one prefix per event and category so
// bucket listings group naturally.
func SnapshotKey(snapshot *models.SeedSnapshot) string {
	return fmt.Sprintf("events/%d/categories/%d/seed-snapshots/%d.json",
		snapshot.EventID, snapshot.CategoryID, snapshot.ID)
}
