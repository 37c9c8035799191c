package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, &CommandError{
			Command:  "git " + strings.Join(args, " "),
			ExitCode: exitErr.ExitCode(),
			Output:   stderr,
		}
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", url, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return newCommandError("git clone "+url+" "+dir, err, out)
	}
	return nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Stash implements the GitClient interface.
func (c *LocalGitClient) Stash(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "stash", "-u")
	return err
}

// Clean implements the GitClient interface.
func (c *LocalGitClient) Clean(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "clean", "-fd")
	return err
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath, ref string) error {
	_, err := c.Run(ctx, repoPath, "checkout", ref)
	return err
}

// GetHistoryLog implements the GitClient interface.
func (c *LocalGitClient) GetHistoryLog(ctx context.Context, repoPath, branch string) ([]byte, error) {
	args := []string{
		"log",
		branch,
		"--reverse",
		"--numstat",
		"--date=iso-strict",
		"--pretty=format:--%H|%cI",
	}
	return c.Run(ctx, repoPath, args...)
}
