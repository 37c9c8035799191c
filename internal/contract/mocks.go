package contract

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, url, dir string) error {
	return m.Called(ctx, url, dir).Error(0)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// Stash implements the GitClient interface.
func (m *MockGitClient) Stash(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

// Clean implements the GitClient interface.
func (m *MockGitClient) Clean(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(ctx context.Context, repoPath, ref string) error {
	return m.Called(ctx, repoPath, ref).Error(0)
}

// GetHistoryLog implements the GitClient interface.
func (m *MockGitClient) GetHistoryLog(ctx context.Context, repoPath, branch string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, branch)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockRunner is a mock type for the CommandRunner type.
// The stdout writer is not part of the recorded arguments; set Stdout to have
// Run copy canned output into it.
type MockRunner struct {
	mock.Mock
	Stdout map[string]string // keyed by the first argument
}

var _ CommandRunner = &MockRunner{} // Compile-time check

// Run implements the CommandRunner interface.
func (m *MockRunner) Run(ctx context.Context, dir string, stdout io.Writer, name string, args ...string) error {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, dir, name)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	if stdout != nil && len(args) > 0 {
		if out, ok := m.Stdout[args[0]]; ok {
			_, _ = io.WriteString(stdout, out)
		}
	}
	return ret.Error(0)
}
