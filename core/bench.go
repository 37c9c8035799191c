package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
)

// jmhMain is the entry point of the benchmark harness.
const jmhMain = "org.openjdk.jmh.Main"

// benchJars lists the archived jars to benchmark, in name order. Javadoc jars
// are excluded regardless of case.
func benchJars(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contract.ErrMissingInput, dir)
		}
		return nil, err
	}
	var jars []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jar") || strings.Contains(strings.ToLower(name), "javadoc") {
			continue
		}
		jars = append(jars, name)
	}
	return jars, nil
}

// installArgs publishes a jar into the local Maven cache under the
// configured coordinates.
func installArgs(coords contract.Coordinates, jar string) []string {
	return []string{
		"install:install-file",
		"-DgroupId=" + coords.GroupID,
		"-DartifactId=" + coords.ArtifactID,
		"-Dversion=" + coords.Version,
		"-Dpackaging=jar",
		"-Dfile=" + jar,
	}
}

// jmhArgs runs the harness jar with JSON results written to resultPath.
func jmhArgs(jvmArgs []string, harnessJar, resultPath string) []string {
	args := append([]string{}, jvmArgs...)
	return append(args, "-cp", harnessJar, jmhMain, "-rff", resultPath, "-rf", "json")
}

// runBench installs each archived jar in turn, rebuilds the harness against
// it and runs the benchmarks. A failure for one jar is logged and the loop
// moves on.
func runBench(ctx context.Context, cfg *contract.Config, deps Deps) ([]schema.BenchmarkResult, error) {
	if err := cfg.ValidateCoordinates(); err != nil {
		return nil, err
	}
	jars, err := benchJars(cfg.Layout.CommitJarsDir())
	if err != nil {
		return nil, err
	}
	if err := cfg.Layout.Ensure(); err != nil {
		return nil, err
	}
	contract.LogInfo("Found %d JAR files to process (excluding javadoc jars)", len(jars))

	harnessJar := filepath.Join(cfg.HarnessDir, "target", cfg.BenchmarkJar)
	var results []schema.BenchmarkResult
	for _, jar := range jars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := benchJar(ctx, cfg, deps.Runner, jar, harnessJar)
		if err != nil {
			contract.LogWarn("Error processing "+jar, err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func benchJar(ctx context.Context, cfg *contract.Config, runner contract.CommandRunner, jar, harnessJar string) (schema.BenchmarkResult, error) {
	short := schema.ShortID(jar)
	jarPath := filepath.Join(cfg.Layout.CommitJarsDir(), jar)
	contract.LogInfo("Processing JAR: %s (prefix: %s)", jar, short)

	if err := runner.Run(ctx, cfg.HarnessDir, nil, "mvn", installArgs(cfg.Coordinates, jarPath)...); err != nil {
		return schema.BenchmarkResult{}, fmt.Errorf("install: %w", err)
	}
	if err := runner.Run(ctx, cfg.HarnessDir, nil, "mvn", "clean", "package"); err != nil {
		return schema.BenchmarkResult{}, fmt.Errorf("harness build: %w", err)
	}
	if _, err := os.Stat(harnessJar); err != nil {
		return schema.BenchmarkResult{}, fmt.Errorf("%w: benchmark jar %s", contract.ErrMissingInput, harnessJar)
	}

	result := schema.BenchmarkResult{
		ShortID:    short,
		Jar:        jar,
		LogPath:    cfg.Layout.JMHLogFile(short),
		ResultPath: cfg.Layout.PerfResultFile(short),
	}
	log, err := os.Create(result.LogPath)
	if err != nil {
		return schema.BenchmarkResult{}, err
	}
	runErr := runner.Run(ctx, cfg.HarnessDir, log, "java", jmhArgs(cfg.JVMArgs, harnessJar, result.ResultPath)...)
	if err := log.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return schema.BenchmarkResult{}, fmt.Errorf("benchmark: %w", runErr)
	}
	contract.LogInfo("Saved benchmark output to %s", result.LogPath)
	return result, nil
}
