package manifest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// git runs a git subcommand in dir and returns its trimmed stdout.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// gitClone clones a module library repository to dest.
func gitClone(ctx context.Context, url, dest string) error {
	if _, err := git(ctx, "", "clone", "--quiet", url, dest); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// gitCheckout checks out a tag, branch or commit in dir.
func gitCheckout(ctx context.Context, dir, ref string) error {
	if _, err := git(ctx, dir, "checkout", "--quiet", ref); err != nil {
		return fmt.Errorf("checking out %s in %s: %w", ref, dir, err)
	}
	return nil
}

func gitFetch(ctx context.Context, dir string) error {
	if _, err := git(ctx, dir, "fetch", "--quiet", "--all", "--tags"); err != nil {
		return fmt.Errorf("fetching in %s: %w", dir, err)
	}
	return nil
}

// gitCurrentCommit returns the HEAD commit hash of dir.
func gitCurrentCommit(ctx context.Context, dir string) (string, error) {
	return git(ctx, dir, "rev-parse", "HEAD")
}
