package dto

import (
	"encoding/json"

	"flex-designer-be/pkg/flex"
)

// DocumentResponse is the live document as the editor UI sees it.
type DocumentResponse struct {
	Root           flex.Container `json:"root"`
	SelectedNodeId *string        `json:"selected_node_id"`
	Revision       uint64         `json:"revision"`
}

type NewDocumentRequest struct {
	Kind         string `json:"kind" validate:"required,oneof=bubble carousel template"`
	TemplateName string `json:"template_name" validate:"required_if=Kind template"`
}

// AddNodeRequest adds either an explicit node template or the component
// library default for NodeType. An empty ParentId replaces the document.
type AddNodeRequest struct {
	ParentId string          `json:"parent_id"`
	Slot     string          `json:"slot" validate:"omitempty,oneof=contents header hero body footer altContent"`
	NodeType string          `json:"node_type" validate:"required_without=Node"`
	Node     json.RawMessage `json:"node"`
}

type AddNodeResponse struct {
	DocumentResponse
	AddedNodeId string `json:"added_node_id"`
}

type UpdateNodeRequest struct {
	Props map[string]any `json:"props" validate:"required"`
}

type SelectNodeRequest struct {
	NodeId *string `json:"node_id"`
}

type ImportDocumentRequest struct {
	FlexMessage json.RawMessage `json:"flex_message" validate:"required"`
}

type ExportDocumentResponse struct {
	FlexMessage any    `json:"flex_message"`
	Json        string `json:"json"`
}

type TemplateResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ComponentResponse struct {
	Type          string         `json:"type"`
	AcceptedSlots []SlotResponse `json:"accepted_slots,omitempty"`
	Defaults      flex.Node      `json:"defaults"`
}

type SlotResponse struct {
	Slot    string   `json:"slot"`
	Ordered bool     `json:"ordered"`
	Accepts []string `json:"accepts"`
}
