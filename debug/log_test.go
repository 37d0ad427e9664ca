package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategorisedLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := EnableAt(logPath); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	Log("poll", "lights=%d sensors=%d", 3, 4)
	for range 4 {
		LogEvery(2, "render", "buffer grew to %d", 1024)
	}
	if Path() != logPath {
		t.Fatalf("Path() = %q", Path())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "poll       lights=3 sensors=4") {
		t.Errorf("missing poll line:\n%s", out)
	}
	if n := strings.Count(out, "buffer grew to 1024"); n != 2 {
		t.Errorf("LogEvery wrote %d lines, want 2", n)
	}
}

func TestLogDisabledIsSilent(t *testing.T) {
	Disable()
	Log("poll", "nothing")
	if Enabled() || Path() != "" {
		t.Fatal("logger should be disabled")
	}
}
