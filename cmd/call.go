package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/tools"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Call a tool and print its result as JSON",
	Long: `Call a tool and print its result as JSON.
Arguments are a JSON object given inline, or read from stdin when "-" is passed.`,
	Example: `  job-research call get_jobs '{"status":"new","minAlignment":60}'
  job-research call mark_job_applied '{"job_id":"anthropic-design-engineer"}'
  echo '{"job_ids":["a","b"]}' | job-research call batch_analyze_jobs -`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(_ *cobra.Command, args []string) {
		call(args)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}

func call(args []string) {
	ctx := context.Background()

	raw := ""
	if len(args) == 2 {
		raw = args[1]
	}

	toolArgs, err := parseToolArgs(raw, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	a := newApplication(ctx)
	defer a.Close()

	result, err := a.dispatcher.Call(ctx, args[0], toolArgs)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			a.logger.Error("unknown tool", zap.String("tool", args[0]), zap.String("hint", "run the tools command to list them"))
		} else {
			a.logger.Error("tool call failed", zap.String("tool", args[0]), zap.Error(err))
		}
		a.Close()
		os.Exit(1)
	}

	if err := printJSON(os.Stdout, result); err != nil {
		a.logger.Fatal("printing result", zap.Error(err))
	}
}

// parseToolArgs decodes a JSON object. "-" reads it from stdin, an empty value means no arguments.
func parseToolArgs(raw string, stdin io.Reader) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading arguments from stdin: %w", err)
		}
		raw = strings.TrimSpace(string(data))
	}
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
