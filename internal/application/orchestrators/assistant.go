package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// AssistantAPI defines the backend surface of the shopping assistant.
type AssistantAPI interface {
	AssistantAsk(ctx context.Context, message string) (string, error)
}

// ErrEmptyQuestion is returned when the buyer submits a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in the assistant's markdown is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// AskAssistantInput carries one question for the shopping assistant.
type AskAssistantInput struct {
	Question string
}

// AskAssistantResult carries the assistant's reply, both as the raw
// markdown the backend returned and as rendered HTML for display.
type AskAssistantResult struct {
	Markdown string
	HTML     template.HTML
}

// AskAssistantDeps carries the dependencies for ExecuteAskAssistant.
type AskAssistantDeps struct {
	API AssistantAPI
}

// ExecuteAskAssistant sends a question to the shopping assistant and
// renders the markdown reply.
// PRE: the question is non-blank after trimming
// POST: on success Result.HTML is the escaped rendering of Result.Markdown
func ExecuteAskAssistant(ctx context.Context, input AskAssistantInput, deps AskAssistantDeps) (AskAssistantResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return AskAssistantResult{}, ErrEmptyQuestion
	}

	reply, err := deps.API.AssistantAsk(ctx, question)
	if err != nil {
		slog.Info("assistant_event", "event", "ask_failed", "error", err.Error())
		return AskAssistantResult{}, err
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(reply), &buf); err != nil {
		slog.Info("assistant_event", "event", "render_failed", "error", err.Error())
		// Fall back to the raw text; the reply is still useful.
		return AskAssistantResult{Markdown: reply, HTML: template.HTML(template.HTMLEscapeString(reply))}, nil
	}

	slog.Info("assistant_event", "event", "answered", "chars", len(reply))
	return AskAssistantResult{Markdown: reply, HTML: template.HTML(buf.String())}, nil
}
