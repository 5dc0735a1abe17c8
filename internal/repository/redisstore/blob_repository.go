package redisstore

import (
	"context"
	"errors"
	"fmt"

	"ship-framework-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ship"

type BlobRepository struct {
	rdb *redis.Client
}

func NewBlobRepository(rdb *redis.Client) contract.BlobRepository {
	return &BlobRepository{rdb: rdb}
}

func redisKey(workspaceID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, workspaceID, key)
}

func (r *BlobRepository) Get(ctx context.Context, workspaceID uuid.UUID, key string) ([]byte, error) {
	value, err := r.rdb.Get(ctx, redisKey(workspaceID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *BlobRepository) Put(ctx context.Context, workspaceID uuid.UUID, key string, value []byte) error {
	if err := r.rdb.Set(ctx, redisKey(workspaceID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *BlobRepository) Delete(ctx context.Context, workspaceID uuid.UUID, key string) error {
	if err := r.rdb.Del(ctx, redisKey(workspaceID, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
