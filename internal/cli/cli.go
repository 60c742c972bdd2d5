// Package cli executes saved requests non-interactively and formats their
// responses for scripting.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/fetchr/internal/executor"
	"github.com/studiowebux/fetchr/internal/filter"
	"github.com/studiowebux/fetchr/internal/interp"
	"github.com/studiowebux/fetchr/internal/store"
	"github.com/studiowebux/fetchr/internal/types"
	"gopkg.in/yaml.v3"
)

// RunOptions configures a single CLI execution.
type RunOptions struct {
	Target       string   // request id or exact name
	ExtraVars    []string // key=value overrides, can repeat
	EnvFile      string   // .env style override file
	OutputFormat string   // json, yaml, body, text
	Filter       string   // JMESPath filter applied to the response body
	Query        string   // JMESPath query or $(cmd) applied after the filter
	ShowFull     bool     // include headers in text output
	Timeout      time.Duration
}

// Run finds the target request, resolves variables, sends it, and prints
// the formatted response. Overrides from -e and --env-file are applied
// before the active environment resolves whatever tokens remain.
func Run(s *store.Store, opts RunOptions) error {
	req, err := findRequest(s, opts.Target)
	if err != nil {
		return err
	}

	draft := types.DraftFromRequest(req)

	overrides, err := collectOverrides(opts)
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		draft = interp.New(nil).WithOverrides(overrides).InterpolateDraft(draft)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = executor.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := s.Send(ctx, draft)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if opts.Filter != "" || opts.Query != "" {
		filtered, err := filter.Apply(resp.Body, opts.Filter, opts.Query)
		if err != nil {
			return err
		}
		resp.Body = filtered
	}

	output, err := formatOutput(resp, opts.OutputFormat, opts.ShowFull)
	if err != nil {
		return err
	}
	fmt.Print(output)

	if resp.Status >= 400 {
		os.Exit(1)
	}
	return nil
}

// findRequest resolves the target first as a request id, then as an exact
// name across all collections.
func findRequest(s *store.Store, target string) (*types.Request, error) {
	req, err := s.GetRequest(target)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = s.FindRequestByName(target)
	}
	if req == nil {
		return nil, fmt.Errorf("request not found: %s", target)
	}
	return req, nil
}

// collectOverrides merges --env-file values with -e flags. Explicit -e
// flags win.
func collectOverrides(opts RunOptions) (map[string]string, error) {
	overrides := make(map[string]string)

	if opts.EnvFile != "" {
		fromFile, err := interp.LoadEnvFile(opts.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
		for key, value := range fromFile {
			overrides[key] = value
		}
	}

	for _, pair := range opts.ExtraVars {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		overrides[key] = value
	}
	return overrides, nil
}

// formatOutput formats the response based on the output format
func formatOutput(resp *types.HttpResponse, format string, showFull bool) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(resp)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "body":
		return resp.Body + "\n", nil

	case "text":
		fallthrough
	default:
		var sb strings.Builder

		statusColor := getStatusColor(resp.Status)
		sb.WriteString(fmt.Sprintf("%s%d %s%s\n", statusColor, resp.Status, resp.StatusText, colorReset))
		sb.WriteString(fmt.Sprintf("Duration: %s | Size: %s\n",
			executor.FormatDuration(resp.ResponseTime),
			executor.FormatSize(resp.Size)))

		if showFull && len(resp.Headers) > 0 {
			sb.WriteString("\nHeaders:\n")
			for key, value := range resp.Headers {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", key, value))
			}
		}

		if resp.Body != "" {
			sb.WriteString("\n")
			sb.WriteString(resp.Body)
			sb.WriteString("\n")
		}
		return sb.String(), nil
	}
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	if status >= 200 && status < 300 {
		return colorGreen
	} else if status >= 400 {
		return colorRed
	}
	return colorYellow
}
