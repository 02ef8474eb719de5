package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/burstplan/internal/app"
)

// HarnessResult holds the outcome of one harness run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
	// Dir is the temporary root the files were written to.
	Dir string
}

// WriteFiles writes files (relative path to content) under a fresh temp
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// RunRender writes files, starts an app and renders every descriptor under
// "plans/" to the output buffer. Files under "fragments/" are loaded as
// expression fragments. Startup and render errors are returned in Err.
func RunRender(t *testing.T, files map[string]string, format string) *HarnessResult {
	t.Helper()
	root := WriteFiles(t, files)

	cfg := app.Config{LogLevel: "debug", WorkerCount: 4, SafetyNet: "cleanup-containers"}
	for name := range files {
		if strings.HasPrefix(name, "fragments/") {
			cfg.FragmentsPath = filepath.Join(root, "fragments")
			break
		}
	}
	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &app.SafeBuffer{}, &app.SafeBuffer{}
	result := &HarnessResult{Dir: root}
	result.App, result.Err = app.NewApp(out, logs, validated)
	if result.Err == nil {
		result.Err = result.App.Render(context.Background(), format, "", filepath.Join(root, "plans"))
	}

	if os.Getenv("BURSTPLAN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	result.Output = out.String()
	result.LogOutput = logs.String()
	return result
}
