// Package files stores transient per-tenant payloads, such as uploaded
// import files, on an afero filesystem.
package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/log"
)

type Config struct {
	Directory string `json:"directory" yaml:"directory" conf:"directory"`
}

// FileInfo describes a stored payload.
type FileInfo struct {
	FileName  string    `json:"fileName"`
	MediaType string    `json:"mediaType"`
	OwnerID   uuid.UUID `json:"ownerId"`
}

// Store keeps each payload next to a small metadata document. Payloads are
// addressed by tenant and file id, never by client-supplied names.
type Store struct {
	fs afero.Fs
}

type Params struct {
	fx.In

	Config Config
}

// NewStore builds a store rooted at the configured directory.
func NewStore(params Params) *Store {
	return &Store{
		fs: afero.NewBasePathFs(afero.NewOsFs(), params.Config.Directory),
	}
}

// NewStoreWithFs builds a store on an explicit filesystem.
func NewStoreWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func payloadPath(tenantID, id uuid.UUID) string {
	return path.Join("temporary", tenantID.String(), id.String())
}

func metaPath(tenantID, id uuid.UUID) string {
	return payloadPath(tenantID, id) + ".meta"
}

func (s *Store) Upload(ctx context.Context, tenantID, userID, id uuid.UUID, fileName, mediaType string, data io.Reader) error {
	dir := path.Join("temporary", tenantID.String())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read upload stream: %w", err)
	}

	if err := afero.WriteFile(s.fs, payloadPath(tenantID, id), payload, 0o644); err != nil {
		return fmt.Errorf("failed to store payload %s: %w", id, err)
	}

	meta, err := json.Marshal(FileInfo{
		FileName:  fileName,
		MediaType: mediaType,
		OwnerID:   userID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode file metadata: %w", err)
	}

	if err := afero.WriteFile(s.fs, metaPath(tenantID, id), meta, 0o644); err != nil {
		return fmt.Errorf("failed to store file metadata %s: %w", id, err)
	}

	log.Debug(ctx, "stored temporary file",
		log.String("tenant_id", tenantID.String()),
		log.String("file_id", id.String()),
		log.String("file_name", fileName),
	)

	return nil
}

// Fetch returns the payload stream and its metadata. The caller owns the
// returned reader.
func (s *Store) Fetch(ctx context.Context, tenantID, id uuid.UUID) (FileInfo, io.ReadCloser, error) {
	meta, err := afero.ReadFile(s.fs, metaPath(tenantID, id))
	if err != nil {
		return FileInfo{}, nil, fmt.Errorf("failed to read file metadata %s: %w", id, err)
	}

	var info FileInfo
	if err := json.Unmarshal(meta, &info); err != nil {
		return FileInfo{}, nil, fmt.Errorf("failed to decode file metadata %s: %w", id, err)
	}

	file, err := s.fs.Open(payloadPath(tenantID, id))
	if err != nil {
		return FileInfo{}, nil, fmt.Errorf("failed to open payload %s: %w", id, err)
	}

	return info, file, nil
}

func (s *Store) Remove(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	if err := s.fs.Remove(payloadPath(tenantID, id)); err != nil {
		return fmt.Errorf("failed to remove payload %s: %w", id, err)
	}

	if err := s.fs.Remove(metaPath(tenantID, id)); err != nil {
		return fmt.Errorf("failed to remove file metadata %s: %w", id, err)
	}

	log.Debug(ctx, "removed temporary file",
		log.String("tenant_id", tenantID.String()),
		log.String("file_id", id.String()),
		log.String("user_id", userID.String()),
	)

	return nil
}
