package service

import (
	"context"
	"errors"
	"testing"

	"flex-designer-be/internal/dto"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	opts    llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = llm.Apply(llm.Options{}, opts...)
	return f.reply, f.err
}

func newGenerator(t *testing.T, reply string, apiKey string) (*fakeLLM, *fixture, IGeneratorService) {
	t.Helper()
	f := newFixture(t)
	fake := &fakeLLM{reply: reply}
	return fake, f, NewGeneratorService(fake, f.svc, true, apiKey, logger.NewNopLogger())
}

func TestGeneratorService_Generate(t *testing.T) {
	reply := "```json\n{\"type\":\"bubble\",\"body\":{\"type\":\"box\",\"layout\":\"vertical\",\"contents\":[{\"type\":\"button\",\"action\":{\"type\":\"uri\",\"uri\":\"https://x\"}}]}}\n```"
	fake, f, gen := newGenerator(t, reply, "configured")

	doc, err := gen.Generate(context.Background(), &dto.GenerateRequest{Instruction: "a coupon", Mode: dto.GenerationModeGenerate})
	require.NoError(t, err)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], `"a coupon"`)
	assert.True(t, fake.opts.JSON)
	assert.Empty(t, fake.opts.APIKey, "configured key is the provider's own")

	btn := bodyOf(t, doc.Root).Contents[0].(*flex.Button)
	assert.Equal(t, "Button", btn.Action.Label)
	assert.NotEmpty(t, btn.NodeID())
	assert.Same(t, doc.Root, f.svc.Current().Root)
}

func TestGeneratorService_ImproveSendsCurrentDocument(t *testing.T) {
	fake, f, gen := newGenerator(t, `{"type":"carousel","contents":[]}`, "")

	wire, err := f.svc.WireJSON()
	require.NoError(t, err)

	doc, err := gen.Generate(context.Background(), &dto.GenerateRequest{
		Instruction: "make it blue",
		Mode:        dto.GenerationModeImprove,
		ApiKey:      "user-key",
	})
	require.NoError(t, err)
	assert.Equal(t, flex.TypeCarousel, doc.Root.NodeType())
	assert.Contains(t, fake.prompts[0], string(wire))
	assert.NotContains(t, fake.prompts[0], `"id"`)
	assert.Equal(t, "user-key", fake.opts.APIKey)
}

func TestGeneratorService_UnwrapsFlexEnvelope(t *testing.T) {
	_, _, gen := newGenerator(t, `{"type":"flex","altText":"x","contents":{"type":"bubble"}}`, "k")

	doc, err := gen.Generate(context.Background(), &dto.GenerateRequest{Instruction: "x", Mode: dto.GenerationModeGenerate})
	require.NoError(t, err)
	assert.Equal(t, flex.TypeBubble, doc.Root.NodeType())
}

func TestGeneratorService_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		fake, _, gen := newGenerator(t, `{}`, "")
		_, err := gen.Generate(ctx, &dto.GenerateRequest{Instruction: "x", Mode: dto.GenerationModeGenerate})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Empty(t, fake.prompts)
	})

	t.Run("blank instruction", func(t *testing.T) {
		fake, _, gen := newGenerator(t, `{}`, "k")
		_, err := gen.Generate(ctx, &dto.GenerateRequest{Instruction: "  ", Mode: dto.GenerationModeGenerate})
		assert.ErrorIs(t, err, ErrEmptyInstruction)
		assert.Empty(t, fake.prompts)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, _, gen := newGenerator(t, `{}`, "k")
		_, err := gen.Generate(ctx, &dto.GenerateRequest{Instruction: "x", Mode: "rewrite"})
		assert.ErrorIs(t, err, ErrUnsupportedAIMode)
	})

	t.Run("llm failure", func(t *testing.T) {
		fake, _, gen := newGenerator(t, "", "k")
		fake.err = errors.New("quota exceeded")
		_, err := gen.Generate(ctx, &dto.GenerateRequest{Instruction: "x", Mode: dto.GenerationModeGenerate})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("malformed reply keeps the document", func(t *testing.T) {
		_, f, gen := newGenerator(t, `{"type":"paragraph"}`, "k")
		before := f.svc.Current().Root
		_, err := gen.Generate(ctx, &dto.GenerateRequest{Instruction: "x", Mode: dto.GenerationModeGenerate})
		assert.ErrorIs(t, err, flex.ErrMalformedDocument)
		assert.Same(t, before, f.svc.Current().Root)
	})
}

func TestCleanGeneratedJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"type":"bubble"}`, want: `{"type":"bubble"}`},
		{in: "```json\n{\"type\":\"bubble\"}\n```", want: `{"type":"bubble"}`},
		{in: "```\n{\"type\":\"bubble\"}```", want: `{"type":"bubble"}`},
		{in: "  {\"type\":\"flex\",\"contents\":{\"type\":\"carousel\"}}  ", want: `{"type":"carousel"}`},
		{in: `not json`, want: `not json`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(CleanGeneratedJSON(tt.in)), tt.in)
	}
}
