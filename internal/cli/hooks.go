package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartoforce/pkg/observability"
)

// logHooks writes pipeline and HTTP events to the CLI logger at debug
// level. Responses are logged at info so `serve` shows traffic by default.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
)

func newLogHooks(l *log.Logger) logHooks { return logHooks{logger: l} }

func (h logHooks) OnIngestComplete(_ context.Context, source string, count, skipped int, d time.Duration, err error) {
	h.logger.Debug("ingested", "source", source, "count", count, "skipped", skipped, "duration", d, "err", err)
}

func (h logHooks) OnSolveStart(_ context.Context, kind string, nodes, links int) {
	h.logger.Debug("solve started", "kind", kind, "nodes", nodes, "links", links)
}

func (h logHooks) OnSolveComplete(_ context.Context, kind string, ticks int, d time.Duration, err error) {
	h.logger.Debug("solve finished", "kind", kind, "ticks", ticks, "duration", d, "err", err)
}

func (h logHooks) OnNodeSkipped(_ context.Context, kind, id string, err error) {
	h.logger.Debug("node skipped", "kind", kind, "id", id, "err", err)
}

func (h logHooks) OnStep(_ context.Context, step string, restart bool) {
	h.logger.Debug("step", "name", step, "restart", restart)
}

func (h logHooks) OnMorphComplete(_ context.Context, nodes int, d time.Duration) {
	h.logger.Debug("morphs built", "nodes", nodes, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render started", "format", format)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render finished", "format", format, "bytes", size, "duration", d, "err", err)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}
