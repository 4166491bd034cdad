// Package analysis turns an FVI assessment into a narrative risk report:
// it retrieves district context from a local knowledge base and asks a
// language model to write the report.
package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

const (
	contextPassages = 3
	contextEchoLen  = 500
)

// ErrUnavailable is returned when no language model is configured.
var ErrUnavailable = errors.New("risk analysis is not configured")

// LLM generates text from a system and a user prompt.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ContextProvider supplies background passages for a place.
type ContextProvider interface {
	Context(place string, k int) string
}

// Report is a generated risk analysis.
type Report struct {
	Analysis   string `json:"analysis"`
	RAGContext string `json:"rag_context"`
}

// Reporter writes risk reports.
type Reporter struct {
	kb      ContextProvider
	llm     LLM
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewReporter creates a Reporter. A nil llm makes every Analyze call return
// ErrUnavailable.
func NewReporter(kb ContextProvider, llm LLM, metrics *observability.Metrics, logger *slog.Logger) *Reporter {
	if kb == nil {
		kb = (*KnowledgeBase)(nil)
	}
	return &Reporter{kb: kb, llm: llm, metrics: metrics, logger: logger}
}

// Analyze retrieves context for place and generates the report for result.
// The echoed context is cut to 500 characters.
func (r *Reporter) Analyze(ctx context.Context, place string, result domain.Result) (Report, error) {
	if r.llm == nil {
		r.record("unavailable")
		return Report{}, ErrUnavailable
	}

	ragContext := r.kb.Context(place, contextPassages)
	analysis, err := r.llm.Complete(ctx, SystemPrompt, UserPrompt(result, ragContext))
	if err != nil {
		r.record("error")
		r.logger.Error("risk analysis failed", "place", place, "error", err)
		return Report{RAGContext: ragContext}, err
	}

	r.record("success")
	r.logger.Info("risk analysis generated", "place", place, "fvi", result.FVIScore, "chars", len(analysis))
	return Report{Analysis: analysis, RAGContext: echo(ragContext)}, nil
}

func (r *Reporter) record(outcome string) {
	if r.metrics != nil {
		r.metrics.AnalysisRequests.WithLabelValues(outcome).Inc()
	}
}

func echo(s string) string {
	if t := truncate(s, contextEchoLen); t != s {
		return t + "..."
	}
	return s
}
