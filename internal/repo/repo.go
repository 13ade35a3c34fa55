// Package repo locates the repository that lineup operates on.
//
// It shells out to the git CLI (via os/exec) the same way the rest of the
// tooling around these repositories does, and falls back to the working
// directory when the target is not inside a Git work tree. lineup only
// reads the work tree; it never runs a git command that changes state.
package repo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// Root resolves the repository root for dir.
//
// Resolution order:
//  1. `git rev-parse --show-toplevel` run in dir
//  2. dir itself, made absolute
//
// An empty dir means the current working directory. The fallback keeps
// lineup usable on plain directories and on hosts without git.
func Root(ctx context.Context, dir string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("root directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("root %s is not a directory", abs))
	}

	top, err := runGit(ctx, abs, "rev-parse", "--show-toplevel")
	if err != nil {
		logger.Debug("not a git work tree, using directory as root",
			zap.String("dir", abs), zap.Error(err))
		return abs, nil
	}

	return filepath.Clean(strings.TrimSpace(top)), nil
}

// runGit executes a git command with the given arguments in the specified
// directory and returns its stdout.
//
// The dir parameter is passed to git via the -C flag so the process's own
// working directory is never changed. On failure the stderr output is
// included in the returned error.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGeneralError, message, err)
	}

	return stdout.String(), nil
}
