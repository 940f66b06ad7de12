package contract

import (
	"context"
	"errors"

	"flex-designer-be/internal/entity"
)

// ErrPersistenceCorrupt reports stored designs that did not parse as an array
// of design records. Designs returned alongside it are the records that did.
var ErrPersistenceCorrupt = errors.New("persisted designs are corrupt")

// KeyValueStore is the blocking get/set pair saved designs live behind.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type DesignRepository interface {
	// LoadAll returns every readable saved design. When the stored payload is
	// damaged the error wraps ErrPersistenceCorrupt.
	LoadAll(ctx context.Context) ([]*entity.Design, error)
	// SaveAll replaces the stored list.
	SaveAll(ctx context.Context, designs []*entity.Design) error
}
