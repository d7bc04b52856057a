package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLogDir(t *testing.T) {
	t.Setenv("LOGS_FOLDER", "/var/log/funnel")
	if got := resolveLogDir("/opt/bin"); got != "/var/log/funnel" {
		t.Errorf("LOGS_FOLDER should win, got %q", got)
	}

	t.Setenv("LOGS_FOLDER", "")
	if got := resolveLogDir("/opt/bin"); got != filepath.Join("/opt/bin", "logs") {
		t.Errorf("expected binary-relative logs, got %q", got)
	}
	if got := resolveLogDir(""); got != "logs" {
		t.Errorf("expected relative logs, got %q", got)
	}
}

func TestEnsureWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	if err := ensureWritable(dir); err != nil {
		t.Fatalf("ensureWritable: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("probe file should be removed")
	}
}

func TestNew_WritesJSONToFileSink(t *testing.T) {
	console, err := os.CreateTemp(t.TempDir(), "console")
	if err != nil {
		t.Fatal(err)
	}
	defer console.Close()

	var file bytes.Buffer
	logger := New(console, &file)
	logger.Info().Str("run", "abc").Msg("analysis complete")

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file sink should hold JSON, got %q: %v", file.String(), err)
	}
	if entry["run"] != "abc" || entry["message"] != "analysis complete" || entry["time"] == nil {
		t.Errorf("unexpected entry %v", entry)
	}
}
