package entity

import (
	"time"

	"flex-designer-be/pkg/flex"
)

// Design is a named snapshot of a document. Root is owned by the design and
// never shared with the live document.
type Design struct {
	Id        string
	Name      string
	Root      flex.Container
	Thumbnail string
	CreatedAt time.Time
	UpdatedAt time.Time
}
