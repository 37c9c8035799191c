// Package workspace tracks the state of the checked-out target repository
// between build attempts.
package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/entran/internal/contract"
)

// ErrNotClean is returned when a checkout is attempted before the working
// tree has been reset.
var ErrNotClean = errors.New("workspace is not clean")

// State is the lifecycle state of the working tree.
type State int

const (
	// Dirty means the tree may hold changes from an earlier attempt.
	Dirty State = iota
	// Clean means local changes were stashed and untracked files removed.
	Clean
	// CheckedOut means the tree is at a specific commit.
	CheckedOut
	// Built means a build ran to completion at the checked-out commit.
	Built
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case CheckedOut:
		return "checked-out"
	case Built:
		return "built"
	default:
		return "dirty"
	}
}

// Workspace is the repository working tree driven through
// clean -> checked-out -> built. A new Workspace starts Dirty.
type Workspace struct {
	git   contract.GitClient
	dir   string
	state State
	ref   string
}

// New returns a workspace for the repository at dir.
func New(git contract.GitClient, dir string) *Workspace {
	return &Workspace{git: git, dir: dir}
}

// Dir is the repository directory.
func (w *Workspace) Dir() string { return w.dir }

// State is the current state.
func (w *Workspace) State() State { return w.state }

// Ref is the commit of the last successful checkout, empty otherwise.
func (w *Workspace) Ref() string { return w.ref }

// Reset stashes local changes including untracked files and removes whatever
// is left untracked. The workspace stays Dirty on failure.
func (w *Workspace) Reset(ctx context.Context) error {
	w.state, w.ref = Dirty, ""
	if err := w.git.Stash(ctx, w.dir); err != nil {
		return fmt.Errorf("stash: %w", err)
	}
	if err := w.git.Clean(ctx, w.dir); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	w.state = Clean
	return nil
}

// Checkout moves a Clean workspace to ref. Any other state is rejected with
// ErrNotClean. A failed checkout leaves the workspace Dirty.
func (w *Workspace) Checkout(ctx context.Context, ref string) error {
	if w.state != Clean {
		return fmt.Errorf("%w: checkout %s from state %s", ErrNotClean, ref, w.state)
	}
	if err := w.git.Checkout(ctx, w.dir, ref); err != nil {
		w.state = Dirty
		return err
	}
	w.state, w.ref = CheckedOut, ref
	return nil
}

// MarkBuilt records a completed build at the checked-out commit.
func (w *Workspace) MarkBuilt() error {
	if w.state != CheckedOut {
		return fmt.Errorf("mark built from state %s", w.state)
	}
	w.state = Built
	return nil
}
