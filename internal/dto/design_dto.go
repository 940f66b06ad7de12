package dto

import (
	"time"

	"flex-designer-be/pkg/flex"
)

type SaveDesignRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,max=2048"`
}

type RenameDesignRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type DesignResponse struct {
	Id          string         `json:"id"`
	Name        string         `json:"name"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	FlexMessage flex.Container `json:"flex_message,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ActivityResponse struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
