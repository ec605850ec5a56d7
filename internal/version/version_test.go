package version

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	if got := String(); got != "dev (unknown)" {
		t.Errorf("String() = %q, want %q", got, "dev (unknown)")
	}
}

func TestAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("starting", Attr())

	out := buf.String()
	for _, want := range []string{"build.version=dev", "build.commit=unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
