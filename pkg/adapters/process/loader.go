// Package process runs component loaders as local processes.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// EnvPrefix namespaces the variables describing the rendering.
const EnvPrefix = "CANOPY_"

// WaitDelay bounds how long a cancelled loader may hold its output pipes open.
const WaitDelay = 500 * time.Millisecond

// Command defines an external loader execution.
type Command struct {
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args" json:"args"`
	Env     map[string]string `yaml:"env" json:"env"`
	Dir     string            `yaml:"dir" json:"dir"`
}

// Input is written to the process stdin as JSON.
type Input struct {
	Kind      ports.LoaderKind           `json:"kind"`
	Rendering *domain.ComponentRendering `json:"rendering"`
	Context   any                        `json:"context,omitempty"`
}

// NewLoader returns a loader that runs cmd once per rendering. The rendering and the
// loader context arrive on stdin; the rendering uid and component name are also
// exported as CANOPY_UID and CANOPY_COMPONENT. Stdout is the result, decoded when
// it is a JSON object or array. A non-zero exit fails the loader with its stderr.
//
// Arguments are fixed by cmd. Nothing from the layout reaches the command line.
func NewLoader(kind ports.LoaderKind, cmd Command) ports.Loader {
	return func(ctx context.Context, c *domain.ComponentRendering, lctx any, _ *domain.LayoutServiceData) (any, error) {
		stdin, err := json.Marshal(Input{Kind: kind, Rendering: c, Context: lctx})
		if err != nil {
			return nil, fmt.Errorf("failed to encode loader input: %w", err)
		}

		proc := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
		proc.Dir = cmd.Dir
		proc.Env = append(proc.Environ(), environment(kind, c, cmd.Env)...)
		proc.Stdin = bytes.NewReader(stdin)
		proc.WaitDelay = WaitDelay
		setupProcessGroup(proc)

		var stdout, stderr bytes.Buffer
		proc.Stdout = &stdout
		proc.Stderr = &stderr

		if err := proc.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("execution failed: %w. Stderr: %s", err, msg)
			}
			return nil, fmt.Errorf("execution failed: %w", err)
		}

		return decodeOutput(stdout.String()), nil
	}
}

func environment(kind ports.LoaderKind, c *domain.ComponentRendering, extra map[string]string) []string {
	env := []string{
		EnvPrefix + "KIND=" + string(kind),
	}
	if c != nil {
		env = append(env,
			EnvPrefix+"UID="+c.UID,
			EnvPrefix+"COMPONENT="+c.ComponentName,
		)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func decodeOutput(output string) any {
	trimmed := strings.TrimSpace(output)

	// Try to parse as JSON (Auto-Detection)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return trimmed
}
