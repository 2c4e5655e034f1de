package livestate

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/stacklok/gem-sources/internal/logger"
)

// Runner executes a command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run calls f
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- the command is operator configuration and arguments are passed without a shell
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Messages rubygems prints for no-op adds and removes
const (
	alreadyPresentMsg = "already present in the cache"
	notPresentMsg     = "not present in cache"
)

// GemCLI drives the live registry through `gem sources`
type GemCLI struct {
	command string
	runner  Runner
}

// GemOption configures a GemCLI
type GemOption func(*GemCLI)

// WithRunner replaces the command runner, mainly for tests
func WithRunner(r Runner) GemOption {
	return func(g *GemCLI) {
		g.runner = r
	}
}

// NewGemCLI creates a live state adapter that invokes the given gem executable
func NewGemCLI(command string, opts ...GemOption) *GemCLI {
	g := &GemCLI{
		command: command,
		runner:  execRunner{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CurrentSources implements LiveState
func (g *GemCLI) CurrentSources(ctx context.Context) ([]string, error) {
	out, err := g.runner.Run(ctx, g.command, "sources")
	if err != nil {
		return nil, fmt.Errorf("failed to list sources with %s: %w: %s", g.command, err, strings.TrimSpace(string(out)))
	}
	return ParseSources(out), nil
}

// AddSource implements LiveState
func (g *GemCLI) AddSource(ctx context.Context, url string) error {
	out, err := g.runner.Run(ctx, g.command, "sources", "--add", url)
	if bytes.Contains(out, []byte(alreadyPresentMsg)) {
		logger.Debugf("Source %s already registered", url)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s sources --add %s: %w: %s", g.command, url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RemoveSource implements LiveState
func (g *GemCLI) RemoveSource(ctx context.Context, url string) error {
	out, err := g.runner.Run(ctx, g.command, "sources", "--remove", url)
	if bytes.Contains(out, []byte(notPresentMsg)) {
		logger.Debugf("Source %s was not registered", url)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s sources --remove %s: %w: %s", g.command, url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ParseSources extracts source URLs from `gem sources` output.
// Only lines mentioning http are kept; headers and blank lines are skipped.
func ParseSources(out []byte) []string {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "http") {
			continue
		}
		seen[line] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for url := range seen {
		result = append(result, url)
	}
	slices.Sort(result)
	return result
}
