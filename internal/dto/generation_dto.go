package dto

const (
	GenerationModeGenerate = "generate"
	GenerationModeImprove  = "improve"
)

type GenerateRequest struct {
	Instruction string `json:"instruction" validate:"required,max=4000"`
	Mode        string `json:"mode" validate:"required,oneof=generate improve"`
	// ApiKey overrides the configured Gemini key for this call.
	ApiKey string `json:"api_key"`
}
