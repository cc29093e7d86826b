package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini infers dependencies through the Gemini API.
type Gemini struct {
	cli   *genai.Client
	model string
}

var _ Client = (*Gemini)(nil)

// NewGemini builds a Gemini-backed client. The API key is required;
// an empty model falls back to DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Infer sends the corpus wrapped in the instruction prompt and returns
// the model's raw reply.
func (g *Gemini) Infer(ctx context.Context, corpus string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, corpus)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no content")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
