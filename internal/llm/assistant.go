// Package llm answers free-text store questions: it routes a message to the
// analyses it needs, flattens the report into prompt context and asks a
// language model, falling back to a plain summary when no model is available.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/insight-service/internal/engine"
)

const systemInstruction = `You are a retail operations analyst for an apparel store network in India.
Answer the store manager's question using only the store context provided.
Quote concrete numbers from the context. Keep the answer under 200 words and end with at most three actions.`

// Answer sources.
const (
	SourceModel    = "gemini"
	SourceFallback = "fallback"
)

// Analyzer produces the report an answer is grounded on.
type Analyzer interface {
	Analyze(ctx context.Context, req engine.Request) (engine.Report, error)
}

// ChatRequest is a question about one store.
type ChatRequest struct {
	StoreID   string `json:"store_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the answer with the context it was built from.
type ChatResponse struct {
	SessionID    string       `json:"session_id"`
	Answer       string       `json:"answer"`
	Capabilities []Capability `json:"capabilities"`
	Context      string       `json:"context"`
	Source       string       `json:"source"`
}

// Assistant answers chat requests.
type Assistant struct {
	analyzer  Analyzer
	generator Generator
	table     DispatchTable
	logger    zerolog.Logger
}

// NewAssistant creates an assistant. A nil generator always uses the fallback answer.
func NewAssistant(analyzer Analyzer, generator Generator) *Assistant {
	return &Assistant{
		analyzer:  analyzer,
		generator: generator,
		table:     DefaultDispatchTable(),
		logger:    log.With().Str("component", "assistant").Logger(),
	}
}

// Answer routes the message, builds context and generates an answer. Store
// errors are returned; model errors fall back to the summary answer.
func (a *Assistant) Answer(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	caps := a.table.Route(req.Message)

	report, err := a.analyzer.Analyze(ctx, engine.Request{StoreID: req.StoreID})
	if err != nil {
		return ChatResponse{}, err
	}
	contextText := BuildContext(report, caps)
	resp := ChatResponse{
		SessionID:    sessionID,
		Capabilities: caps,
		Context:      contextText,
	}

	if a.generator != nil {
		prompt := fmt.Sprintf("Store context:\n%s\nQuestion: %s", contextText, strings.TrimSpace(req.Message))
		answer, err := a.generator.Generate(ctx, systemInstruction, prompt)
		if err == nil {
			resp.Answer, resp.Source = answer, SourceModel
			return resp, nil
		}
		a.logger.Warn().Err(err).Str("session_id", sessionID).Str("store_id", req.StoreID).Msg("Model unavailable, using fallback answer")
	}

	resp.Answer, resp.Source = FallbackAnswer(report), SourceFallback
	return resp, nil
}

// FallbackAnswer summarises the top insights without a model.
func FallbackAnswer(report engine.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", report.Store.Name)
	if len(report.Insights) == 0 {
		fmt.Fprintf(&b, "no open issues. %d competitors within %.1f km", report.Proximity.Count(), report.Proximity.RadiusKm)
		if report.Trend.HasData() {
			fmt.Fprintf(&b, ", sales %+.1f%% over the last %d days", report.Trend.SalesGrowth, report.Trend.Days)
		}
		b.WriteString(".")
		return b.String()
	}
	n := min(3, len(report.Insights))
	fmt.Fprintf(&b, "%d open insights. Top %d:", len(report.Insights), n)
	for _, in := range report.Insights[:n] {
		fmt.Fprintf(&b, "\n- [%s] %s", in.Priority, in.Title)
		if len(in.RecommendedActions) > 0 {
			fmt.Fprintf(&b, ". Next step: %s", in.RecommendedActions[0])
		}
	}
	return b.String()
}
