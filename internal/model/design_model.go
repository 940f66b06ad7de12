package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Design is the persisted shape of a saved design. The designs list is stored
// as one JSON array of these records under a single key.
type Design struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	FlexMessage json.RawMessage `json:"flexMessage"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// KeyValue backs the postgres key-value store.
type KeyValue struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (KeyValue) TableName() string {
	return "kv_entries"
}
