package textservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/Black-And-White-Club/typer-master/app/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// FallbackText is served whenever generation is unavailable.
const FallbackText = "The quick brown fox jumps over the lazy dog."

const (
	defaultTimeout          = 10 * time.Second
	defaultFailureThreshold = 3
)

// Generator is the remote text-generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service produces typing-practice text. Generate never fails.
type Service interface {
	Generate(ctx context.Context, class LengthClass) string
	Status() Status
}

// Status is the provider's health as seen by operators.
type Status int32

const (
	StatusReady Status = iota
	StatusDegraded
)

func (s Status) String() string {
	if s == StatusDegraded {
		return "degraded"
	}
	return "ready"
}

// ProviderConfig bounds each remote call.
type ProviderConfig struct {
	// Timeout caps a single generation call. Zero means the default.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures after which the
	// provider reports itself degraded. Zero means the default.
	FailureThreshold int
}

// Provider wraps a Generator with prompt selection, cleanup and the fallback.
type Provider struct {
	generator Generator
	cfg       ProviderConfig
	logger    *slog.Logger
	metrics   metrics.TextMetrics
	tracer    trace.Tracer

	status   atomic.Int32
	failures atomic.Int64
}

// NewProvider creates a Provider. A nil generator leaves the provider
// permanently degraded, serving only the fallback.
func NewProvider(gen Generator, cfg ProviderConfig, logger *slog.Logger, m metrics.TextMetrics, tracer trace.Tracer) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("TextProvider")
	}

	p := &Provider{
		generator: gen,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
	}
	if gen == nil {
		p.status.Store(int32(StatusDegraded))
		logger.Warn("Text generator not configured, serving fallback text only")
	}
	m.SetDegraded(p.Status() == StatusDegraded)
	return p
}

// Status reports whether the remote capability is currently usable.
func (p *Provider) Status() Status {
	return Status(p.status.Load())
}

// Generate returns typing text for class, or FallbackText on any failure.
func (p *Provider) Generate(ctx context.Context, class LengthClass) string {
	ctx, span := p.tracer.Start(ctx, "TextProvider.Generate", trace.WithAttributes(
		attribute.String("length_class", string(class)),
	))
	defer span.End()

	text, err := p.attempt(ctx, class)
	if err != nil {
		var failure *ProviderFailure
		if !errors.As(err, &failure) {
			failure = &ProviderFailure{Reason: ReasonRemoteError, Err: err}
		}
		span.SetAttributes(attribute.String("fallback_reason", string(failure.Reason)))
		p.recordFailure(ctx, failure)
		return FallbackText
	}

	p.recordSuccess(ctx)
	return text
}

// attempt performs one generation call. Every failure is a *ProviderFailure.
func (p *Provider) attempt(ctx context.Context, class LengthClass) (string, error) {
	if p.generator == nil {
		return "", &ProviderFailure{Reason: ReasonNotConfigured}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := p.generator.Generate(callCtx, Prompt(class))
		done <- reply{text: text, err: err}
	}()

	var res reply
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = reply{err: callCtx.Err()}
	}

	if res.err != nil {
		return "", classify(ctx, res.err)
	}
	if !utf8.ValidString(res.text) {
		return "", &ProviderFailure{Reason: ReasonMalformedResponse, Err: errors.New("invalid UTF-8 in response")}
	}
	text := cleanText(res.text)
	if text == "" {
		return "", &ProviderFailure{Reason: ReasonEmptyResponse, Err: ErrEmptyResponse}
	}
	return text, nil
}

func classify(parent context.Context, err error) *ProviderFailure {
	switch {
	case parent.Err() != nil:
		return &ProviderFailure{Reason: ReasonCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderFailure{Reason: ReasonTimeout, Err: err}
	case errors.Is(err, ErrEmptyResponse):
		return &ProviderFailure{Reason: ReasonEmptyResponse, Err: err}
	case errors.Is(err, ErrMalformedResponse):
		return &ProviderFailure{Reason: ReasonMalformedResponse, Err: err}
	default:
		return &ProviderFailure{Reason: ReasonRemoteError, Err: err}
	}
}

func (p *Provider) recordFailure(ctx context.Context, failure *ProviderFailure) {
	p.metrics.RecordFallback(ctx, string(failure.Reason))

	switch failure.Reason {
	case ReasonNotConfigured:
		p.logger.DebugContext(ctx, "Serving fallback text, generator not configured")
		return
	case ReasonCanceled:
		// the caller went away; says nothing about the remote side
		p.logger.DebugContext(ctx, "Text generation canceled by caller")
		return
	}

	p.logger.WarnContext(ctx, "Text generation failed, serving fallback",
		slog.String("reason", string(failure.Reason)),
		slog.String("error", failure.Error()),
	)

	n := p.failures.Add(1)
	if n >= int64(p.cfg.FailureThreshold) && p.status.CompareAndSwap(int32(StatusReady), int32(StatusDegraded)) {
		p.metrics.SetDegraded(true)
		p.logger.ErrorContext(ctx, "Text provider degraded",
			slog.Int64("consecutive_failures", n),
		)
	}
}

func (p *Provider) recordSuccess(ctx context.Context) {
	p.failures.Store(0)
	if p.status.CompareAndSwap(int32(StatusDegraded), int32(StatusReady)) {
		p.metrics.SetDegraded(false)
		p.logger.InfoContext(ctx, "Text provider recovered")
	}
}

// cleanText trims whitespace and one layer of matching surrounding quotes.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
