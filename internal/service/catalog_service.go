package service

import (
	"flex-designer-be/internal/dto"
	"flex-designer-be/pkg/flex"
)

// ICatalogService describes what the editor palette offers.
type ICatalogService interface {
	Components() []*dto.ComponentResponse
	Templates() []*dto.TemplateResponse
}

type catalogService struct{}

func NewCatalogService() ICatalogService {
	return &catalogService{}
}

// Components lists every node type with its default fields and the slots it
// holds children in.
func (s *catalogService) Components() []*dto.ComponentResponse {
	res := make([]*dto.ComponentResponse, 0, len(flex.Types))
	for _, t := range flex.Types {
		c := &dto.ComponentResponse{
			Type:     string(t),
			Defaults: flex.DefaultTemplate(t),
		}
		for _, slot := range flex.Slots(t) {
			accepted := flex.AcceptedTypes(t, slot)
			names := make([]string, len(accepted))
			for i, a := range accepted {
				names[i] = string(a)
			}
			c.AcceptedSlots = append(c.AcceptedSlots, dto.SlotResponse{
				Slot:    string(slot),
				Ordered: slot.Ordered(),
				Accepts: names,
			})
		}
		res = append(res, c)
	}
	return res
}

func (s *catalogService) Templates() []*dto.TemplateResponse {
	templates := flex.Templates()
	res := make([]*dto.TemplateResponse, 0, len(templates))
	for _, t := range templates {
		res = append(res, &dto.TemplateResponse{Name: t.Name, Description: t.Description})
	}
	return res
}
