package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flex-designer-be/internal/entity"
	"flex-designer-be/internal/model"
	"flex-designer-be/pkg/flex/codec"
)

// TimeLayout is the ISO-8601 form timestamps are persisted in.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var errIncompleteRecord = errors.New("design record is missing required fields")

type DesignMapper struct{}

func NewDesignMapper() *DesignMapper {
	return &DesignMapper{}
}

// ToEntity decodes a stored record. A record lacking any required field, or
// whose snapshot is not a valid editor tree, is rejected.
func (m *DesignMapper) ToEntity(d *model.Design) (*entity.Design, error) {
	if d == nil {
		return nil, errIncompleteRecord
	}
	if d.Id == "" || d.Name == "" || len(d.FlexMessage) == 0 || d.CreatedAt == "" || d.UpdatedAt == "" {
		return nil, fmt.Errorf("%w (id %q)", errIncompleteRecord, d.Id)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("design %s createdAt: %w", d.Id, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("design %s updatedAt: %w", d.Id, err)
	}
	root, err := codec.DecodeEditor(d.FlexMessage)
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", d.Id, err)
	}

	return &entity.Design{
		Id:        d.Id,
		Name:      d.Name,
		Root:      root,
		Thumbnail: d.Thumbnail,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *DesignMapper) ToModel(d *entity.Design) (*model.Design, error) {
	if d == nil {
		return nil, nil
	}
	snapshot, err := json.Marshal(d.Root)
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", d.Id, err)
	}
	return &model.Design{
		Id:          d.Id,
		Name:        d.Name,
		FlexMessage: snapshot,
		Thumbnail:   d.Thumbnail,
		CreatedAt:   d.CreatedAt.UTC().Format(TimeLayout),
		UpdatedAt:   d.UpdatedAt.UTC().Format(TimeLayout),
	}, nil
}

func (m *DesignMapper) ToModels(designs []*entity.Design) ([]*model.Design, error) {
	models := make([]*model.Design, 0, len(designs))
	for _, d := range designs {
		md, err := m.ToModel(d)
		if err != nil {
			return nil, err
		}
		if md != nil {
			models = append(models, md)
		}
	}
	return models, nil
}
