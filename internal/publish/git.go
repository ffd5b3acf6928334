// Package publish shells out to git to commit and push regenerated
// outputs. It is a thin wrapper with no state of its own; failures are
// reported, never retried.
package publish

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	appLog "makersite/internal/log"
)

// AutoCommitPush stages the given files (those that exist), commits and
// pushes. Returns false with a nil error when the work tree has no
// changes to publish.
func AutoCommitPush(ctx context.Context, workDir string, files []string, now time.Time) (bool, error) {
	if workTreeClean(ctx, workDir) {
		appLog.Info("git work tree clean, nothing to publish")
		return false, nil
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := runGit(ctx, workDir, "add", f); err != nil {
			return false, fmt.Errorf("publish: git add %s: %w", f, err)
		}
	}

	msg := fmt.Sprintf("Update event site\n\nAutomated refresh - %s", now.Format("2006-01-02 15:04:05 MST"))
	if err := runGit(ctx, workDir, "commit", "-m", msg); err != nil {
		return false, fmt.Errorf("publish: git commit: %w", err)
	}
	appLog.Info("changes committed")

	if err := runGit(ctx, workDir, "push"); err != nil {
		return false, fmt.Errorf("publish: git push: %w", err)
	}
	appLog.Info("changes pushed")

	return true, nil
}

// workTreeClean reports whether neither the work tree nor the index has
// pending changes. git diff --quiet exits non-zero when dirty.
func workTreeClean(ctx context.Context, workDir string) bool {
	unstaged := runGit(ctx, workDir, "diff", "--quiet") == nil
	staged := runGit(ctx, workDir, "diff", "--cached", "--quiet") == nil
	return unstaged && staged
}

func runGit(ctx context.Context, workDir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %v: %w (%s)", args, err, string(out))
	}
	return nil
}
