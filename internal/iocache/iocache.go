// Package iocache is for persisting pipeline runs and their per-commit metrics.
package iocache

import (
	"sync"

	"github.com/huangsam/entran/internal/contract"
)

// ResultStoreManager owns the ResultStore used by the pipeline.
type ResultStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	results      contract.ResultStore
}

var _ contract.ResultManager = &ResultStoreManager{} // Compile-time check

// GetResultStore returns the results ResultStore.
func (mgr *ResultStoreManager) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}
