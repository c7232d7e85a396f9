package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/typer-master/app/observability/metrics"
	"github.com/Black-And-White-Club/typer-master/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "typer-master"

// Observability bundles the logger, tracer and metrics handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  *metrics.Prometheus
}

// New builds the process-wide observability stack from config.
func New(cfg *config.Config) Observability {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   NewLogger(os.Stdout, cfg.Observability.Environment, cfg.Observability.LogLevel),
		Tracer:   otel.Tracer(ServiceName),
		Registry: reg,
		Metrics:  metrics.NewPrometheus(reg),
	}
}

// NewNoop returns a silent stack for tests.
func NewNoop() Observability {
	reg := prometheus.NewRegistry()
	return Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Registry: reg,
		Metrics:  metrics.NewPrometheus(reg),
	}
}

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if environment == config.EnvProduction {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(
		slog.String("service", ServiceName),
		slog.String("environment", environment),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
