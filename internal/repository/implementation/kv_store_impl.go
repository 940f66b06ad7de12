package implementation

import (
	"context"
	"errors"

	"flex-designer-be/internal/model"
	"flex-designer-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValueStoreImpl keeps values in the kv_entries table.
type KeyValueStoreImpl struct {
	db *gorm.DB
}

func NewKeyValueStore(db *gorm.DB) contract.KeyValueStore {
	return &KeyValueStoreImpl{db: db}
}

func (r *KeyValueStoreImpl) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var m model.KeyValue
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(m.Value), true, nil
}

func (r *KeyValueStoreImpl) Set(ctx context.Context, key string, value []byte) error {
	m := model.KeyValue{Key: key, Value: datatypes.JSON(value)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}
