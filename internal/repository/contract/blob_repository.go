package contract

import (
	"context"

	"github.com/google/uuid"
)

// BlobRepository stores opaque serialized values under fixed keys, one
// namespace per workspace. Get returns nil, nil when the key is absent.
type BlobRepository interface {
	Get(ctx context.Context, workspaceID uuid.UUID, key string) ([]byte, error)
	Put(ctx context.Context, workspaceID uuid.UUID, key string, value []byte) error
	Delete(ctx context.Context, workspaceID uuid.UUID, key string) error
}

// BackupRepository writes export dumps to long-term object storage.
type BackupRepository interface {
	Put(ctx context.Context, workspaceID uuid.UUID, name string, content []byte) (string, error)
}
