package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs plugin processes. Each Execute call is one process: the
// request goes in on stdin as JSON and the response comes back on stdout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills plugin processes after the
// given number of milliseconds.
func NewExecutor(timeoutMs int) *Executor {
	return &Executor{timeout: time.Duration(timeoutMs) * time.Millisecond}
}

// Execute runs the plugin executable with req on stdin and decodes stdout
// as a Response. The process runs in the plugin's own directory.
func (e *Executor) Execute(plugin *Plugin, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("plugin timed out after %s", e.timeout)
		case errOut.Len() > 0:
			return nil, fmt.Errorf("plugin execution failed: %w, stderr: %s", err, errOut.String())
		default:
			return nil, fmt.Errorf("plugin execution failed: %w", err)
		}
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse plugin response: %w, stdout: %s", err, out.String())
	}
	return &resp, nil
}
