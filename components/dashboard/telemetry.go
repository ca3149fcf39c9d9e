package dashboard

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events as structured log entries.
type LogTelemetry struct {
	Logger logrus.FieldLogger
	Level  logrus.Level
}

// Record logs the event with its payload as fields.
func (t LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	logger := normalizeLogger(t.Logger)
	entry := logger.WithField("event", event)
	if len(payload) > 0 {
		entry = entry.WithFields(logrus.Fields(payload))
	}
	switch t.Level {
	case logrus.InfoLevel:
		entry.Info("telemetry")
	default:
		entry.Debug("telemetry")
	}
}

func normalizeLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}
