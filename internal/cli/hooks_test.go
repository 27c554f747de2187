package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooksLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.InfoLevel))

	h.OnSolveStart(ctx, "cartogram", 3, 2)
	h.OnStep(ctx, "split", true)
	if buf.Len() != 0 {
		t.Errorf("pipeline events logged at info level: %q", buf.String())
	}

	h.OnResponse(ctx, http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	if !strings.Contains(buf.String(), "/healthz") {
		t.Errorf("response not logged: %q", buf.String())
	}
}

func TestLogHooksDebug(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.DebugLevel))

	h.OnNodeSkipped(ctx, "cartogram", "Atlantis", nil)
	h.OnRenderComplete(ctx, "svg", 1024, time.Millisecond, nil)
	out := buf.String()
	for _, want := range []string{"node skipped", "Atlantis", "render finished", "1024"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
