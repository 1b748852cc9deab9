package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements Oracle using Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: modelName}, nil
}

func (g *Gemini) Synonyms(ctx context.Context, term string) ([]string, error) {
	model := g.client.GenerativeModel(g.model)

	var sb strings.Builder
	sb.WriteString("You are a hardware documentation terminology assistant.\n")
	sb.WriteString("List alternative spellings and abbreviations for the measurement unit or specification term below, ")
	sb.WriteString("one per line, no numbering, no explanations. Only include spellings that appear in real technical documents.\n\n")
	sb.WriteString("Term: " + strings.TrimSpace(term) + "\n")

	resp, err := model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("synonym query for %q: %w", term, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line == "" || strings.ContainsAny(line, ":.") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
