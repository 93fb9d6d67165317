package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external binary stackreel relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to the binary to read its version.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Version     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// VersionRunner executes a binary and returns its combined output.
type VersionRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// versionTimeout bounds each version probe.
const versionTimeout = 5 * time.Second

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	return CheckBinariesWith(context.Background(), requirements, nil)
}

// CheckBinariesWith is CheckBinaries with an injectable version runner. A nil
// run executes the binary.
func CheckBinariesWith(ctx context.Context, requirements []Requirement, run VersionRunner) []Status {
	if run == nil {
		run = defaultVersionRunner
	}
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		if len(req.VersionArgs) > 0 {
			probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
			out, err := run(probeCtx, path, req.VersionArgs...)
			cancel()
			if err != nil {
				status.Available = false
				status.Detail = fmt.Sprintf("%s %s failed: %v", cmd, strings.Join(req.VersionArgs, " "), err)
			} else {
				status.Version = firstLine(string(out))
			}
		}
		results = append(results, status)
	}
	return results
}

func defaultVersionRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
