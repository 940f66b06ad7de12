package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"flex-designer-be/internal/entity"
	"flex-designer-be/internal/mapper"
	"flex-designer-be/internal/model"
	"flex-designer-be/internal/repository/contract"
)

// DesignRepositoryImpl stores the saved designs list as one JSON array under
// a single key of any KeyValueStore.
type DesignRepositoryImpl struct {
	store  contract.KeyValueStore
	key    string
	mapper *mapper.DesignMapper
}

func NewDesignRepository(store contract.KeyValueStore, key string) contract.DesignRepository {
	return &DesignRepositoryImpl{
		store:  store,
		key:    key,
		mapper: mapper.NewDesignMapper(),
	}
}

func (r *DesignRepositoryImpl) LoadAll(ctx context.Context) ([]*entity.Design, error) {
	data, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrPersistenceCorrupt, err)
	}

	designs := make([]*entity.Design, 0, len(raws))
	var skipped []error
	for i, raw := range raws {
		var m model.Design
		if err := json.Unmarshal(raw, &m); err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		d, err := r.mapper.ToEntity(&m)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		designs = append(designs, d)
	}

	if len(skipped) > 0 {
		return designs, fmt.Errorf("%w: skipped %d record(s): %w", contract.ErrPersistenceCorrupt, len(skipped), errors.Join(skipped...))
	}
	return designs, nil
}

func (r *DesignRepositoryImpl) SaveAll(ctx context.Context, designs []*entity.Design) error {
	models, err := r.mapper.ToModels(designs)
	if err != nil {
		return err
	}
	data, err := json.Marshal(models)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, data)
}
