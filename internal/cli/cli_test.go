package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/config"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/internal/engine"
	"github.com/me/godp/internal/logging"
	"github.com/me/godp/internal/plugin"
	"github.com/me/godp/internal/server"
	"github.com/me/godp/internal/store"
)

// startTestServer starts a full server stack with an in-memory archive and
// returns its URL.
func startTestServer(t *testing.T) string {
	t.Helper()
	srvLogger := logging.Discard()

	archive, err := store.NewSQLiteStore(":memory:", srvLogger)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := archive.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	algorithms := algorithm.NewDefaultRegistry()
	eng := engine.New(engine.Options{Workers: 2, Logger: srvLogger, Archiver: archive})
	t.Cleanup(eng.Shutdown)

	srv := server.New(config.DefaultServerConfig(), eng, dataset.NewDefaultRegistry(), algorithms, srvLogger,
		server.WithArchive(archive),
		server.WithPluginManager(plugin.NewManager(algorithms, srvLogger)),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func writeDataFile(t *testing.T, values ...float64) string {
	t.Helper()
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "%g\n", v)
	}
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write data file: %v", err)
	}
	return path
}

// runCLI executes the CLI with the given args, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var cmdBuf bytes.Buffer
	root.SetOut(&cmdBuf)
	root.SetErr(&cmdBuf)
	root.SetArgs(args)

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := root.Execute()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String() + cmdBuf.String(), err
}

// submitAndWait runs submit --wait and returns the CLI output plus the
// parsed task id.
func submitAndWait(t *testing.T, url, source string, extra ...string) (string, string) {
	t.Helper()
	args := append([]string{
		"--server", url,
		"submit", source,
		"--algorithm", "StatisticalAnalysis",
		"--wait",
	}, extra...)

	output, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("submit error: %v\noutput: %s", err, output)
	}

	const marker = "Task submitted: "
	idx := strings.Index(output, marker)
	if idx < 0 {
		t.Fatalf("no task id in output: %s", output)
	}
	id := output[idx+len(marker):]
	id = strings.TrimSpace(strings.SplitN(id, "\n", 2)[0])
	return output, id
}

func TestSubmitCommand(t *testing.T) {
	url := startTestServer(t)

	output, id := submitAndWait(t, url, writeDataFile(t, 1, 2, 3, 4, 5))
	if !strings.HasPrefix(id, "TASK_") {
		t.Errorf("task id = %q, want TASK_ prefix", id)
	}
	if !strings.Contains(output, "COMPLETED") {
		t.Errorf("expected COMPLETED in output, got: %s", output)
	}
	if !strings.Contains(output, "Mean: 3") {
		t.Errorf("expected result data in output, got: %s", output)
	}
}

func TestSubmitCommand_BadParam(t *testing.T) {
	url := startTestServer(t)
	_, err := runCLI(t,
		"--server", url,
		"submit", writeDataFile(t, 1),
		"--algorithm", "StatisticalAnalysis",
		"--param", "novalue",
	)
	if err == nil {
		t.Fatal("expected error for malformed --param")
	}
}

func TestStatusCommand(t *testing.T) {
	url := startTestServer(t)
	_, id := submitAndWait(t, url, writeDataFile(t, 1, 2, 3), "--name", "my stats", "--priority", "HIGH")

	output, err := runCLI(t, "--server", url, "status", id)
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	for _, want := range []string{id, "COMPLETED", "HIGH", "my stats"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestResultCommand(t *testing.T) {
	url := startTestServer(t)
	_, id := submitAndWait(t, url, writeDataFile(t, 1, 2, 3, 4, 5))

	output, err := runCLI(t, "--server", url, "result", id)
	if err != nil {
		t.Fatalf("result error: %v", err)
	}
	if !strings.Contains(output, "Result: SUCCESS") {
		t.Errorf("expected SUCCESS in output, got: %s", output)
	}
	if !strings.Contains(output, "Mean: 3") {
		t.Errorf("expected report in output, got: %s", output)
	}
}

func TestCancelCommand_Terminal(t *testing.T) {
	url := startTestServer(t)
	_, id := submitAndWait(t, url, writeDataFile(t, 1, 2, 3))

	output, err := runCLI(t, "--server", url, "cancel", id)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if !strings.Contains(output, "was not cancelled") {
		t.Errorf("expected 'was not cancelled' for a terminal task, got: %s", output)
	}
}

func TestHistoryCommand(t *testing.T) {
	url := startTestServer(t)
	_, id := submitAndWait(t, url, writeDataFile(t, 1, 2, 3), "--name", "archived run")

	// The archive write trails the status flip slightly.
	var output string
	var err error
	for i := 0; i < 100; i++ {
		output, err = runCLI(t, "--server", url, "history")
		if err != nil {
			t.Fatalf("history error: %v", err)
		}
		if strings.Contains(output, id) {
			break
		}
	}
	if !strings.Contains(output, id) {
		t.Fatalf("expected %s in history output, got: %s", id, output)
	}
	if !strings.Contains(output, "COMPLETED") {
		t.Errorf("expected COMPLETED in output, got: %s", output)
	}
}

func TestTypesCommand(t *testing.T) {
	url := startTestServer(t)

	output, err := runCLI(t, "--server", url, "types")
	if err != nil {
		t.Fatalf("types error: %v", err)
	}
	for _, want := range []string{"NUMERIC", "TEXT", "StatisticalAnalysis", "KMeansClustering", "TextAnalysis"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestPluginsCommands(t *testing.T) {
	url := startTestServer(t)

	script := `
var plugin = {
    name: "RangeAnalysis",
    version: "1.0.0",
    kinds: ["NUMERIC"],
    execute: function(input) { return "Range: " + (input.max - input.min); },
};
`
	path := filepath.Join(t.TempDir(), "range.js")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	output, err := runCLI(t, "--server", url, "plugins", "load", path)
	if err != nil {
		t.Fatalf("plugins load error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "Plugin loaded: RangeAnalysis 1.0.0") {
		t.Errorf("unexpected load output: %s", output)
	}

	output, err = runCLI(t, "--server", url, "plugins", "list")
	if err != nil {
		t.Fatalf("plugins list error: %v", err)
	}
	if !strings.Contains(output, "RangeAnalysis") {
		t.Errorf("expected RangeAnalysis in list output, got: %s", output)
	}

	output, err = runCLI(t, "--server", url, "plugins", "unload", "RangeAnalysis")
	if err != nil {
		t.Fatalf("plugins unload error: %v", err)
	}
	if !strings.Contains(output, "Plugin unloaded") {
		t.Errorf("unexpected unload output: %s", output)
	}
}

func TestHealthCommand(t *testing.T) {
	url := startTestServer(t)

	output, err := runCLI(t, "--server", url, "health")
	if err != nil {
		t.Fatalf("health error: %v", err)
	}
	if !strings.Contains(output, "Server: healthy") {
		t.Errorf("expected healthy server, got: %s", output)
	}
	if !strings.Contains(output, "Workers:   2") {
		t.Errorf("expected worker count, got: %s", output)
	}
}

func TestSubmitCommand_UnknownAlgorithm(t *testing.T) {
	url := startTestServer(t)
	_, err := runCLI(t,
		"--server", url,
		"submit", writeDataFile(t, 1),
		"--algorithm", "Nope",
	)
	if err == nil {
		t.Fatal("expected error for unknown algorithm type")
	}
}
