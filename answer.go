package sift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// qaPrompt is the grounded answering template. The model may use only the
// retrieved context, must state what is known and missing when context is
// partial, and must fall back to the exact not-found sentinel when nothing
// relevant exists.
const qaPrompt = `You are a senior GRC (Governance, Risk, and Compliance) analyst.

Use ONLY the retrieved context below to answer the question factually and concisely.
If the context provides partial information, summarize clearly what is known and what is missing.
Quote or paraphrase relevant sentences when possible.
If absolutely no relevant details are found, respond with:
"Information not found in the provided document."

Context:
%s

Question: %s

Answer:`

// noAnswerText is substituted when the model returns an empty completion.
const noAnswerText = "No answer generated."

// degradedPrefix renders a pipeline failure as answer text, preserving the
// lenient API contract: failed questions still produce an answer string.
const degradedPrefix = "Error during QA execution: "

// Answerer produces an answer for one question. *Generator is the
// canonical implementation; callers depend on this interface so fakes can
// stand in.
type Answerer interface {
	Answer(ctx context.Context, question string) Answer
}

// Generator produces grounded answers using the stuff strategy: all
// retrieved context is concatenated into a single prompt and the model is
// called exactly once per question. No iterative summarization.
type Generator struct {
	retriever Retriever
	llm       ChatModel
	logger    *slog.Logger
}

var _ Answerer = (*Generator)(nil)

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// GeneratorLogger sets the structured logger. Degraded answers are logged
// at WARN level with the underlying error.
func GeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator over the given retriever and chat model.
func NewGenerator(retriever Retriever, llm ChatModel, opts ...GeneratorOption) *Generator {
	g := &Generator{retriever: retriever, llm: llm}
	for _, o := range opts {
		o(g)
	}
	if g.logger == nil {
		g.logger = nopLogger
	}
	return g
}

// Answer retrieves context for the question and asks the model to answer
// from it. Any failure along the way degrades to an error-text answer
// instead of propagating; the Kind tag keeps the failure inspectable for
// programmatic callers.
func (g *Generator) Answer(ctx context.Context, question string) Answer {
	text, err := g.generate(ctx, question)
	if err != nil {
		g.logger.Warn("answer degraded", "question", question, "error", err)
		return Answer{
			Question: question,
			Text:     degradedPrefix + err.Error(),
			Kind:     AnswerDegraded,
			Reason:   err.Error(),
		}
	}
	return Answer{Question: question, Text: text, Kind: AnswerOK}
}

func (g *Generator) generate(ctx context.Context, question string) (string, error) {
	chunks, err := g.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	// Zero retrieved chunks still goes to the model with empty context; the
	// prompt instructs it to return the not-found sentinel.
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	prompt := fmt.Sprintf(qaPrompt, strings.Join(parts, "\n\n"), question)

	resp, err := g.llm.Complete(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return noAnswerText, nil
	}
	return text, nil
}
