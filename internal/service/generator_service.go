package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"flex-designer-be/internal/constant"
	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/pkg/llm"
)

const generatorModule = "GeneratorService"

var (
	ErrMissingAPIKey     = errors.New("gemini API key is not configured")
	ErrEmptyInstruction  = errors.New("instruction is empty")
	ErrGenerationFailed  = errors.New("failed to generate flex message with AI")
	ErrUnsupportedAIMode = errors.New("unsupported AI mode")

	fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")
)

type IGeneratorService interface {
	// Generate asks the LLM for a wire tree and installs it as the live
	// document. In improve mode the current document is sent along. A reply
	// that does not hydrate leaves the document as it was.
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.DocumentResponse, error)
}

type generatorService struct {
	provider   llm.LLMProvider
	designs    IDesignService
	requireKey bool
	apiKey     string
	logger     logger.ILogger
}

// NewGeneratorService wires the generator. requireKey is set for providers
// that authenticate with an API key (gemini); apiKey is the configured one.
func NewGeneratorService(provider llm.LLMProvider, designs IDesignService, requireKey bool, apiKey string, log logger.ILogger) IGeneratorService {
	return &generatorService{
		provider:   provider,
		designs:    designs,
		requireKey: requireKey,
		apiKey:     apiKey,
		logger:     log,
	}
}

func (s *generatorService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.DocumentResponse, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}
	key := strings.TrimSpace(req.ApiKey)
	if s.requireKey && key == "" && s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var prompt string
	switch req.Mode {
	case dto.GenerationModeGenerate:
		prompt = fmt.Sprintf(constant.FlexGeneratePrompt, instruction)
	case dto.GenerationModeImprove:
		current, err := s.designs.WireJSON()
		if err != nil {
			return nil, err
		}
		prompt = fmt.Sprintf(constant.FlexImprovePrompt, string(current), instruction)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAIMode, req.Mode)
	}

	opts := []llm.Option{llm.WithJSON()}
	if key != "" {
		opts = append(opts, llm.WithAPIKey(key))
	}

	s.logger.Info(generatorModule, "Requesting flex message", map[string]interface{}{"mode": req.Mode})
	raw, err := s.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		s.logger.Error(generatorModule, "LLM call failed", map[string]interface{}{"mode": req.Mode, "error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	doc, err := s.designs.ImportWire(ctx, CleanGeneratedJSON(raw))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CleanGeneratedJSON trims a model reply down to the flex container it
// carries: markdown fences are removed and a {"type":"flex"} message
// envelope is unwrapped to its contents.
func CleanGeneratedJSON(raw string) []byte {
	cleaned := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(cleaned); m != nil && m[2] != "" {
		cleaned = strings.TrimSpace(m[2])
	}
	data := []byte(cleaned)

	var envelope struct {
		Type     string          `json:"type"`
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Type == "flex" && len(envelope.Contents) > 0 {
		return bytes.TrimSpace(envelope.Contents)
	}
	return data
}
