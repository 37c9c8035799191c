package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/internal/pom"
	"github.com/huangsam/entran/internal/workspace"
	"github.com/huangsam/entran/schema"
	"golang.org/x/crypto/blake2b"
)

// Maven arguments of the two build passes.
var (
	checkBuildArgs   = []string{"clean", "package", "-Dmaven.test.skip=true", "-Drat.skip=true"}
	archiveBuildArgs = []string{"package", "-Dmaven.test.skip=true", "-Drat.skip=true", "-Dmaven.javadoc.skip=true"}
)

// BuildOutput is the result of both build passes.
type BuildOutput struct {
	Builds    []schema.BuildRecord
	Artifacts []schema.ArtifactRecord
}

// Buildable counts the commits that built in the first pass.
func (o *BuildOutput) Buildable() int {
	n := 0
	for _, b := range o.Builds {
		if b.Status == schema.BuildSuccess {
			n++
		}
	}
	return n
}

// runBuild reads the commit table, establishes the buildability of every
// candidate and rebuilds the successful ones to archive their jars.
func runBuild(ctx context.Context, cfg *contract.Config, deps Deps) (*BuildOutput, error) {
	commits, err := readCommitTable(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Layout.Ensure(); err != nil {
		return nil, err
	}

	candidates := SelectCandidates(commits, cfg.Threshold)
	if len(candidates) == 0 {
		contract.LogInfo("No commits found with Refactorings_found >= %d", cfg.Threshold)
	}

	ws := workspace.New(deps.Git, cfg.RepoDir)
	builds, err := checkBuilds(ctx, deps.Runner, ws, candidates)
	if err != nil {
		return nil, err
	}
	if err := outwriter.WriteBuildStatusCSV(cfg.Layout.BuildStatus(), builds); err != nil {
		return nil, fmt.Errorf("failed to write build status: %w", err)
	}

	buildable := SelectBuildable(commits, builds, cfg.Threshold)
	artifacts, err := archiveBuilds(ctx, cfg, deps.Runner, ws, buildable)
	if err != nil {
		return nil, err
	}
	if err := outwriter.WriteArtifactsCSV(cfg.Layout.Artifacts(), artifacts); err != nil {
		return nil, fmt.Errorf("failed to write artifact index: %w", err)
	}
	return &BuildOutput{Builds: builds, Artifacts: artifacts}, nil
}

// checkBuilds is the first pass. Every candidate gets a record; a commit whose
// working tree could not be reset keeps an unset status.
func checkBuilds(ctx context.Context, runner contract.CommandRunner, ws *workspace.Workspace, candidates []schema.CommitRecord) ([]schema.BuildRecord, error) {
	builds := make([]schema.BuildRecord, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := schema.BuildRecord{Commit: c.Hash, Refactorings: c.Refactorings}
		contract.LogInfo("Processing commit: %s", c.Hash)

		if err := ws.Reset(ctx); err != nil {
			contract.LogWarn("Failed to reset working tree", err)
			builds = append(builds, record)
			continue
		}
		if err := ws.Checkout(ctx, c.Hash); err != nil {
			contract.LogWarn("Failed to checkout "+c.Hash, err)
			builds = append(builds, failed(record, err))
			continue
		}
		patchDescriptor(ws.Dir())
		if err := runner.Run(ctx, ws.Dir(), nil, "mvn", checkBuildArgs...); err != nil {
			contract.LogWarn("Failed to compile "+c.Hash, err)
			builds = append(builds, failed(record, err))
			continue
		}
		_ = ws.MarkBuilt()
		record.Status = schema.BuildSuccess
		builds = append(builds, record)
	}
	return builds, nil
}

// archiveBuilds is the second pass. Failures are logged and the commit
// contributes no artifact.
func archiveBuilds(ctx context.Context, cfg *contract.Config, runner contract.CommandRunner, ws *workspace.Workspace, buildable []schema.CommitRecord) ([]schema.ArtifactRecord, error) {
	var artifacts []schema.ArtifactRecord
	for _, c := range buildable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		contract.LogInfo("Rebuilding commit: %s", c.Hash)

		if err := ws.Reset(ctx); err != nil {
			contract.LogWarn("Failed to reset working tree", err)
			continue
		}
		if err := ws.Checkout(ctx, c.Hash); err != nil {
			contract.LogWarn("Failed to checkout "+c.Hash, err)
			continue
		}
		if err := runner.Run(ctx, ws.Dir(), nil, "mvn", "clean"); err != nil {
			contract.LogWarn("Failed to clean "+c.Hash, err)
			continue
		}
		patchDescriptor(ws.Dir())
		if err := runner.Run(ctx, ws.Dir(), nil, "mvn", archiveBuildArgs...); err != nil {
			contract.LogWarn("Failed to compile "+c.Hash, err)
			continue
		}
		_ = ws.MarkBuilt()

		copied, err := archiveJars(filepath.Join(ws.Dir(), cfg.ArtifactDir), cfg.Layout.CommitJarsDir(), c.Hash)
		if err != nil {
			contract.LogWarn("Failed to archive jars of "+c.Hash, err)
		}
		artifacts = append(artifacts, copied...)
	}
	return artifacts, nil
}

func failed(record schema.BuildRecord, err error) schema.BuildRecord {
	record.Status = schema.BuildFailed
	record.Cause = err.Error()
	return record
}

// patchDescriptor pins the compiler level when the checked-out commit has a
// descriptor at its root.
func patchDescriptor(dir string) {
	path := filepath.Join(dir, pom.FileName)
	if !pom.Exists(path) {
		return
	}
	if err := pom.PatchCompiler(path, pom.JavaLevel); err != nil {
		contract.LogWarn("Failed to patch "+path, err)
	}
}

// isPrimaryJar excludes the test and source jars a build may also produce.
func isPrimaryJar(name string) bool {
	return strings.HasSuffix(name, ".jar") &&
		!strings.Contains(name, "tests") &&
		!strings.Contains(name, "sources")
}

// archiveJars copies the primary jars of srcDir into dstDir as
// <short>-<jar>. A missing srcDir yields no artifacts.
func archiveJars(srcDir, dstDir, commit string) ([]schema.ArtifactRecord, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			contract.LogInfo("No artifact directory at %s", srcDir)
			return nil, nil
		}
		return nil, err
	}

	var out []schema.ArtifactRecord
	for _, e := range entries {
		if e.IsDir() || !isPrimaryJar(e.Name()) {
			continue
		}
		name := schema.ShortID(commit) + "-" + e.Name()
		dst := filepath.Join(dstDir, name)
		digest, err := copyWithDigest(filepath.Join(srcDir, e.Name()), dst)
		if err != nil {
			return out, err
		}
		contract.LogInfo("Copied and renamed %s to %s", e.Name(), name)
		out = append(out, schema.ArtifactRecord{Commit: commit, Name: name, Path: dst, Digest: digest})
	}
	return out, nil
}

// copyWithDigest copies src to dst and returns the BLAKE2b-256 digest of the
// copied bytes.
func copyWithDigest(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		_ = out.Close()
		return "", err
	}
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
