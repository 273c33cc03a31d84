package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/job-research/internal/ai"
	"github.com/spigell/job-research/internal/logger"
	"go.uber.org/zap"
)

const (
	providerName        = "gemini"
	defaultMaxLogLength = 200
	maxRequestRunes     = 4000
	noValue             = "(not provided)"
	completedMessage    = "Agent completed"
)

var (
	//go:embed prompts/system.md
	systemPrompt string

	//go:embed prompts/cv-optimizer.md
	cvOptimizerTemplate string

	//go:embed prompts/job-analyzer.md
	jobAnalyzerTemplate string
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Agent runs the cv-optimizer and job-analyzer agents on Gemini.
type Agent struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAgent(generator contentGenerator, log *zap.Logger, maxLogLength int) *Agent {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Agent{
		generator: generator,
		logger:    logger.WithFields(log, logger.ProviderFields(providerName, generator.Model())...),
		maxLogLen: maxLogLength,
	}
}

func (a *Agent) Invoke(ctx context.Context, req ai.Request) (*ai.Response, error) {
	if err := ai.ValidateAgentType(req.AgentType); err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content request",
		zap.String("agent_type", req.AgentType),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("invoke %s agent: %w", req.AgentType, err)
	}

	a.logger.Debug("gemini generate content response",
		zap.String("agent_type", req.AgentType),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return &ai.Response{
		AgentType: req.AgentType,
		Prompt:    req.Prompt,
		Message:   completedMessage,
		Output:    raw,
		Model:     a.generator.Model(),
	}, nil
}

func buildPrompt(req ai.Request) (string, error) {
	template := jobAnalyzerTemplate
	if req.AgentType == ai.AgentCVOptimizer {
		template = cvOptimizerTemplate
	}

	jobJSON := noValue
	if req.Job != nil {
		payload, err := json.MarshalIndent(req.Job, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal job payload: %w", err)
		}
		jobJSON = string(payload)
	}

	prompt := strings.ReplaceAll(template, "{{JOB_JSON}}", jobJSON)
	prompt = strings.ReplaceAll(prompt, "{{PROFILE}}", orNoValue(req.Profile))
	prompt = strings.ReplaceAll(prompt, "{{REQUEST}}", orNoValue(sanitizeRequest(req.Prompt)))
	return prompt, nil
}

// sanitizeRequest drops template markers and caps the user instructions.
func sanitizeRequest(s string) string {
	s = strings.NewReplacer("{{", "", "}}", "").Replace(strings.TrimSpace(s))
	runes := []rune(s)
	if len(runes) > maxRequestRunes {
		s = string(runes[:maxRequestRunes])
	}
	return s
}

func orNoValue(s string) string {
	if strings.TrimSpace(s) == "" {
		return noValue
	}
	return strings.TrimSpace(s)
}
