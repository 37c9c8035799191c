package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// initTestRepo creates a repository with two commits and returns its path and branch.
func initTestRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	git := func(args ...string) string {
		full := append([]string{"-C", dir, "-c", "user.name=Test", "-c", "user.email=test@example.com"}, args...)
		out, err := exec.Command("git", full...).CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return strings.TrimSpace(string(out))
	}
	git("init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.java"), []byte("class A {}\n"), 0o644))
	git("add", ".")
	git("commit", "-m", "first")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.java"), []byte("class A {\n  int x;\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.java"), []byte("class B {}\n"), 0o644))
	git("add", ".")
	git("commit", "-m", "second")
	return dir, git("rev-parse", "--abbrev-ref", "HEAD")
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedOutput := []byte("a1b2c3d commit message")
	expectedError := errors.New("mocked git error")

	// Variadic args are flattened into the call, so .On() must match that shape.
	mockClient.On("Run", ctx, "/path/to/repo", "log", "-1", "--oneline").Return(expectedOutput, expectedError)

	out, err := mockClient.Run(ctx, "/path/to/repo", "log", "-1", "--oneline")
	assert.Equal(t, expectedOutput, out, "Run should return the programmed output")
	assert.Equal(t, expectedError, err, "Run should return the programmed error")
	mockClient.AssertExpectations(t)
}

// TestNewLocalGitClient tests the constructor for LocalGitClient.
func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client, "NewLocalGitClient should return a non-nil client")
	assert.IsType(t, &LocalGitClient{}, client)
}

// TestLocalGitClient_Run tests the Run method with failing commands.
func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo, _ := initTestRepo(t)

	tests := []struct {
		name     string
		repoPath string
		args     []string
	}{
		{"invalid repo path", "/nonexistent/path", []string{"status"}},
		{"invalid git command", repo, []string{"invalid-command"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Run(ctx, tt.repoPath, tt.args...)
			require.Error(t, err)
			var cmdErr *CommandError
			assert.ErrorAs(t, err, &cmdErr)
		})
	}
}

func TestLocalGitClient_HistoryAndCheckout(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo, branch := initTestRepo(t)

	out, err := client.GetHistoryLog(ctx, repo, branch)
	require.NoError(t, err)
	headers := 0
	for line := range strings.SplitSeq(string(out), "\n") {
		if strings.HasPrefix(line, "--") {
			headers++
		}
	}
	assert.Equal(t, 2, headers, "one header line per commit")

	head, err := client.GetRepoHash(ctx, repo)
	require.NoError(t, err)
	assert.Len(t, head, 40)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(out)), "--"), "log should start with the oldest commit header")
	assert.NotContains(t, strings.SplitN(string(out), "\n", 2)[0], head, "oldest commit comes first")

	// Dirty the tree, then reset it the way the build driver does.
	require.NoError(t, os.WriteFile(filepath.Join(repo, "A.java"), []byte("changed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "untracked.txt"), []byte("x\n"), 0o644))
	require.NoError(t, client.Stash(ctx, repo))
	require.NoError(t, client.Clean(ctx, repo))
	_, err = os.Stat(filepath.Join(repo, "untracked.txt"))
	assert.True(t, os.IsNotExist(err), "stash -u should remove untracked files")

	require.NoError(t, client.Checkout(ctx, repo, head+"~1"))
	_, err = os.Stat(filepath.Join(repo, "B.java"))
	assert.True(t, os.IsNotExist(err), "B.java did not exist in the first commit")

	assert.Error(t, client.Checkout(ctx, repo, "does-not-exist"))
}

func TestLocalGitClient_Clone(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	repo, _ := initTestRepo(t)

	dest := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, client.Clone(ctx, repo, dest))
	_, err := os.Stat(filepath.Join(dest, "A.java"))
	assert.NoError(t, err)

	err = client.Clone(ctx, filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "x"))
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Command, "git clone")
}
