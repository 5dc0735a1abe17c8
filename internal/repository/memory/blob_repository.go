package memory

import (
	"context"

	"ship-framework-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type BlobRepository struct {
	cache *cache.Cache
}

// NewBlobRepository keeps blobs in process memory. Entries never expire; they
// live as long as the process.
func NewBlobRepository() contract.BlobRepository {
	return &BlobRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func cacheKey(workspaceID uuid.UUID, key string) string {
	return workspaceID.String() + ":" + key
}

func (r *BlobRepository) Get(_ context.Context, workspaceID uuid.UUID, key string) ([]byte, error) {
	if x, found := r.cache.Get(cacheKey(workspaceID, key)); found {
		return append([]byte(nil), x.([]byte)...), nil
	}
	return nil, nil
}

func (r *BlobRepository) Put(_ context.Context, workspaceID uuid.UUID, key string, value []byte) error {
	r.cache.Set(cacheKey(workspaceID, key), append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

func (r *BlobRepository) Delete(_ context.Context, workspaceID uuid.UUID, key string) error {
	r.cache.Delete(cacheKey(workspaceID, key))
	return nil
}
