package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"google.golang.org/genai"
)

type modelCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCall
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	models := &fakeModels{resp: textResponse("first", "  ", "second")}
	g := &Generator{models: models, modelName: "gemini-pro"}

	out, err := g.GenerateContent(context.Background(), "be brief", "  analyze this  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}
	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model %q", call.model)
	}
	if call.config == nil || call.config.SystemInstruction == nil {
		t.Fatal("expected system instruction to be set")
	}
	if got := call.config.SystemInstruction.Parts[0].Text; got != "be brief" {
		t.Fatalf("unexpected system instruction %q", got)
	}
	if got := call.contents[0].Parts[0].Text; got != "analyze this" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestGeneratorWithoutSystemInstruction(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	g := &Generator{models: models, modelName: "gemini-pro"}

	if _, err := g.GenerateContent(context.Background(), " ", "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if models.calls[0].config != nil {
		t.Fatalf("expected nil config, got %+v", models.calls[0].config)
	}
}

func TestGeneratorErrors(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}

	tests := []struct {
		name    string
		gen     *Generator
		prompt  string
		wantErr string
	}{
		{
			name:    "nil generator",
			gen:     nil,
			prompt:  "prompt",
			wantErr: "not initialized",
		},
		{
			name:    "empty prompt",
			gen:     &Generator{models: &fakeModels{}, modelName: "m"},
			prompt:  "   ",
			wantErr: "prompt must not be empty",
		},
		{
			name:    "api error",
			gen:     &Generator{models: &fakeModels{err: apiErr}, modelName: "m"},
			prompt:  "prompt",
			wantErr: "generate content",
		},
		{
			name:    "nil response",
			gen:     &Generator{models: &fakeModels{}, modelName: "m"},
			prompt:  "prompt",
			wantErr: "no response",
		},
		{
			name:    "empty response",
			gen:     &Generator{models: &fakeModels{resp: textResponse(" ")}, modelName: "m"},
			prompt:  "prompt",
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.GenerateContent(context.Background(), "", tt.prompt)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGeneratorWrapsAPIError(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	g := &Generator{models: &fakeModels{err: apiErr}, modelName: "m"}

	_, err := g.GenerateContent(context.Background(), "", "prompt")
	var target genai.APIError
	if !errors.As(err, &target) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
	if target.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected code %d", target.Code)
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), " ", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGeneratorModel(t *testing.T) {
	var g *Generator
	if g.Model() != "" {
		t.Fatal("expected empty model for nil generator")
	}
	g = &Generator{modelName: defaultModel}
	if g.Model() != "gemini-2.5-pro" {
		t.Fatalf("unexpected model %q", g.Model())
	}
}
