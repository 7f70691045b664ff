package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// commandContext is swapped by tests to avoid running real git.
var commandContext = exec.CommandContext

const gitignoreContent = `# Exclude Archive folder (contains large original MP3s)
Archive/

# Exclude any original MP3 files
original*.mp3
`

// EnsureGitignore (re)writes the exclusion rules that keep the archive and
// any original audio out of the published tree.
func EnsureGitignore(baseDir string) error {
	return os.WriteFile(filepath.Join(baseDir, ".gitignore"), []byte(gitignoreContent), 0o644)
}

// Gateway stages, commits and pushes the base directory. Each step runs
// exactly once per call; recovery from a failed push is manual.
type Gateway struct {
	dir    string
	logger *log.Logger
}

// NewGateway returns a gateway operating on the given repository directory.
func NewGateway(dir string, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{dir: dir, logger: logger}
}

// Push stages everything, commits with the given message and pushes. A commit
// with nothing staged is reported as a no-op, not an error. Segment and feed
// state on disk is never touched, so a failure here leaves a valid tree.
func (g *Gateway) Push(ctx context.Context, message string) error {
	// Drop the archive from the index in case an earlier run tracked it
	// before the ignore rule existed. Failure here means it was never
	// tracked.
	_, _ = g.run(ctx, "rm", "-r", "--cached", archiveEntry)

	if output, err := g.run(ctx, "add", "."); err != nil {
		return fmt.Errorf("git add: %w: %s", err, output)
	}

	output, err := g.run(ctx, "commit", "-m", message)
	switch {
	case strings.Contains(output, "nothing to commit"):
		g.logger.Printf("no changes to commit")
	case err != nil:
		return fmt.Errorf("git commit: %w: %s", err, output)
	default:
		g.logger.Printf("committed: %s", message)
	}

	if output, err := g.run(ctx, "push"); err != nil {
		return fmt.Errorf("git push: %w: %s", err, output)
	}

	g.logger.Printf("pushed to remote")
	return nil
}

const archiveEntry = "Archive"

func (g *Gateway) run(ctx context.Context, args ...string) (string, error) {
	cmd := commandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	output, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(output)), err
}

// Remediation returns the manual commands to print when a push fails before
// the remote is configured.
func Remediation(user, repo string) string {
	return fmt.Sprintf("if this is the first push, configure the remote manually:\n"+
		"  git remote add origin https://github.com/%s/%s.git\n"+
		"  git push -u origin main", user, repo)
}
