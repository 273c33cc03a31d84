// Package ai defines the agent contract used by the invoke_agent tool.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/job-research/internal/jobs"
)

const (
	AgentCVOptimizer = "cv-optimizer"
	AgentJobAnalyzer = "job-analyzer"

	placeholderMessage = "Agent invocation should be handled by the client: no agent provider is configured"
)

// AgentTypes lists the supported agent types.
var AgentTypes = []string{AgentCVOptimizer, AgentJobAnalyzer}

// Request is one agent invocation. Job and Profile are optional context.
type Request struct {
	AgentType string
	Prompt    string
	Job       *jobs.Job
	Profile   string
}

type Response struct {
	AgentType string `json:"agent_type"`
	Prompt    string `json:"prompt"`
	Message   string `json:"message"`
	Output    string `json:"output,omitempty"`
	Model     string `json:"model,omitempty"`
}

type Agent interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// ValidateAgentType returns a validation error for unknown agent types.
func ValidateAgentType(agentType string) error {
	for _, known := range AgentTypes {
		if agentType == known {
			return nil
		}
	}
	return &jobs.ValidationError{Msg: fmt.Sprintf("unknown agent type %q, expected one of %s", agentType, strings.Join(AgentTypes, ", "))}
}

// Placeholder echoes the request back. It is used when no provider is configured.
type Placeholder struct{}

func (Placeholder) Invoke(_ context.Context, req Request) (*Response, error) {
	return &Response{
		AgentType: req.AgentType,
		Prompt:    req.Prompt,
		Message:   placeholderMessage,
	}, nil
}
