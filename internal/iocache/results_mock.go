package iocache

import (
	"time"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/mock"
)

// MockResultManager is a mock implementation of ResultManager for testing.
type MockResultManager struct {
	mock.Mock
}

var _ contract.ResultManager = &MockResultManager{} // Compile-time check

// GetResultStore implements the ResultManager interface.
func (m *MockResultManager) GetResultStore() contract.ResultStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ResultStore)
	return store
}

// MockResultStore is a mock implementation of ResultStore for testing.
type MockResultStore struct {
	mock.Mock
}

var _ contract.ResultStore = &MockResultStore{} // Compile-time check

// BeginRun implements the ResultStore interface.
func (m *MockResultStore) BeginRun(startTime time.Time, repo, branch string, threshold int, configParams map[string]any) (string, error) {
	args := m.Called(startTime, repo, branch, threshold, configParams)
	return args.String(0), args.Error(1)
}

// EndRun implements the ResultStore interface.
func (m *MockResultStore) EndRun(runID string, endTime time.Time, totalCommits int) error {
	return m.Called(runID, endTime, totalCommits).Error(0)
}

// RecordCommitMetrics implements the ResultStore interface.
func (m *MockResultStore) RecordCommitMetrics(runID string, record schema.CommitMetricRecord) error {
	return m.Called(runID, record).Error(0)
}

// GetStatus implements the ResultStore interface.
func (m *MockResultStore) GetStatus() (schema.ResultsStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ResultsStatus), args.Error(1)
}

// GetAllRuns implements the ResultStore interface.
func (m *MockResultStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllCommitMetrics implements the ResultStore interface.
func (m *MockResultStore) GetAllCommitMetrics() ([]schema.CommitMetricRecord, error) {
	args := m.Called()
	metrics, _ := args.Get(0).([]schema.CommitMetricRecord)
	return metrics, args.Error(1)
}

// Close implements the ResultStore interface.
func (m *MockResultStore) Close() error {
	return m.Called().Error(0)
}
