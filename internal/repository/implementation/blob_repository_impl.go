package implementation

import (
	"context"
	"errors"

	"ship-framework-be/internal/model"
	"ship-framework-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlobRepositoryImpl struct {
	db *gorm.DB
}

func NewBlobRepository(db *gorm.DB) contract.BlobRepository {
	return &BlobRepositoryImpl{db: db}
}

func (r *BlobRepositoryImpl) Get(ctx context.Context, workspaceID uuid.UUID, key string) ([]byte, error) {
	var m model.WorkspaceBlob
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND key = ?", workspaceID, key).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(m.Value), nil
}

func (r *BlobRepositoryImpl) Put(ctx context.Context, workspaceID uuid.UUID, key string, value []byte) error {
	m := model.WorkspaceBlob{
		WorkspaceID: workspaceID,
		Key:         key,
		Value:       datatypes.JSON(value),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

func (r *BlobRepositoryImpl) Delete(ctx context.Context, workspaceID uuid.UUID, key string) error {
	return r.db.WithContext(ctx).
		Where("workspace_id = ? AND key = ?", workspaceID, key).
		Delete(&model.WorkspaceBlob{}).Error
}
