// Package search is the orchestrator. It routes a query to one of the mode
// chains, walks the chain's providers in priority order until one answers,
// and normalizes the outcome into the detailed/direct response pair.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"prism/internal/logging"
	"prism/internal/mode"
	"prism/internal/providers"
)

// searchPreamble frames spliced web results for the research modes.
const searchPreamble = "Use the following up-to-date web search results as context when answering. Cite sources by their bracketed number where relevant.\n\n"

const directAnswerLimit = 150

// Request is one validated search invocation.
type Request struct {
	Messages []providers.ChatMessage
	Mode     mode.Mode
	Lang     string
	Quality  providers.Quality
}

// Query returns the text of the latest user message.
func (r Request) Query() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return strings.TrimSpace(r.Messages[i].Content)
		}
	}
	return ""
}

// Chains groups the ordered provider lists walked per mode. Slots may be nil
// or empty; the orchestrator simply advances past them.
type Chains struct {
	Text     []providers.TextCompleter
	Image    []providers.ImageGenerator
	Video    []providers.VideoGenerator
	Searcher providers.Searcher
}

// ModelResolver maps a text mode to its upstream model identifier.
type ModelResolver func(m mode.Mode) string

// TimeoutResolver maps a text mode to the deadline applied to its completion.
// A zero duration leaves the caller's context untouched.
type TimeoutResolver func(m mode.Mode) time.Duration

// Orchestrator executes search requests.
type Orchestrator struct {
	chains     Chains
	modelFor   ModelResolver
	timeoutFor TimeoutResolver
	logger     *slog.Logger
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithTextTimeout bounds each text completion with a per-mode deadline, so
// fast modes get a short timeout and reasoning modes a longer one.
func WithTextTimeout(resolver TimeoutResolver) Option {
	return func(o *Orchestrator) {
		o.timeoutFor = resolver
	}
}

// NewOrchestrator wires the mode chains. modelFor must not be nil.
func NewOrchestrator(chains Chains, modelFor ModelResolver, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		chains:   chains,
		modelFor: modelFor,
		logger:   logging.NewComponentLogger(logger, "search"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs one request to completion. The caller's mode is overridden
// when the query carries an explicit intent, then the matching chain is
// walked until a provider answers.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (providers.Result, error) {
	query := req.Query()
	if query == "" {
		return providers.Result{}, errors.New("search: empty query")
	}

	effective := req.Mode
	if detected, ok := mode.Detect(query); ok {
		effective = detected
	}
	prompt := mode.StripCommand(query)
	if prompt == "" {
		prompt = query
	}
	if prompt != query {
		req.Messages = replaceLastUser(req.Messages, prompt)
	}

	logger := o.logger
	if id := RequestID(ctx); id != "" {
		logger = logger.With(logging.String(logging.FieldRequestID, id))
	}
	logger.Info("dispatch",
		logging.String("mode", string(effective)),
		logging.Int("messages", len(req.Messages)))

	switch {
	case effective.IsImage():
		return o.generateImage(ctx, logger, prompt, req.Quality)
	case effective == mode.Video:
		return o.generateVideo(ctx, logger, prompt)
	default:
		return o.completeText(ctx, logger, effective, req)
	}
}

func (o *Orchestrator) completeText(ctx context.Context, logger *slog.Logger, m mode.Mode, req Request) (providers.Result, error) {
	if o.timeoutFor != nil {
		if timeout := o.timeoutFor(m); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
	}

	messages := make([]providers.ChatMessage, 0, len(req.Messages)+2)
	if instruction := languageInstruction(req.Lang); instruction != "" {
		messages = append(messages, providers.ChatMessage{Role: "system", Content: instruction})
	}
	if m.NeedsWebSearch() && o.chains.Searcher != nil {
		results, err := o.chains.Searcher.Search(ctx, req.Query())
		if err == nil && results != "" {
			messages = append(messages, providers.ChatMessage{
				Role:    "system",
				Content: searchPreamble + results,
			})
		}
	}
	messages = append(messages, req.Messages...)

	model := o.modelFor(m)
	var lastErr error
	for _, completer := range o.chains.Text {
		answer, err := completer.Complete(ctx, model, messages)
		if err != nil {
			lastErr = err
			o.logSkip(logger, completer.Name(), err)
			continue
		}
		return textResult(answer), nil
	}
	return providers.Result{}, chainFailure("text", lastErr)
}

func (o *Orchestrator) generateImage(ctx context.Context, logger *slog.Logger, prompt string, quality providers.Quality) (providers.Result, error) {
	var lastErr error
	for _, generator := range o.chains.Image {
		payload, err := generator.GenerateImage(ctx, prompt, quality)
		if err != nil {
			lastErr = err
			o.logSkip(logger, generator.Name(), err)
			continue
		}
		return mediaResult(payload, "Here is the image you asked for."), nil
	}
	return providers.Result{}, chainFailure("image", lastErr)
}

func (o *Orchestrator) generateVideo(ctx context.Context, logger *slog.Logger, prompt string) (providers.Result, error) {
	var lastErr error
	for _, generator := range o.chains.Video {
		payload, err := generator.GenerateVideo(ctx, prompt)
		if err != nil {
			// Billing failures on a paid provider must reach the caller
			// rather than silently degrading to a free fallback.
			if errors.Is(err, providers.ErrBilling) {
				return providers.Result{}, err
			}
			lastErr = err
			o.logSkip(logger, generator.Name(), err)
			continue
		}
		return mediaResult(payload, "Here is the video you asked for."), nil
	}
	return providers.Result{}, chainFailure("video", lastErr)
}

func (o *Orchestrator) logSkip(logger *slog.Logger, provider string, err error) {
	if errors.Is(err, providers.ErrUnconfigured) {
		logger.Warn("provider skipped, no credentials", logging.String("provider", provider))
		return
	}
	logger.Warn("provider failed, advancing", logging.String("provider", provider), logging.Error(err))
}

// replaceLastUser rewrites the latest user message, used to drop a leading
// command token before the conversation goes upstream.
func replaceLastUser(messages []providers.ChatMessage, content string) []providers.ChatMessage {
	out := make([]providers.ChatMessage, len(messages))
	copy(out, messages)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Role == "user" {
			out[i].Content = content
			break
		}
	}
	return out
}

func chainFailure(chain string, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("search: %s chain exhausted: %w", chain, lastErr)
	}
	return fmt.Errorf("search: %s chain exhausted: no providers configured", chain)
}

func textResult(answer string) providers.Result {
	return providers.Result{Detailed: answer, Direct: directAnswer(answer)}
}

func mediaResult(payload, sentence string) providers.Result {
	return providers.Result{Detailed: payload, Direct: sentence}
}

// directAnswer truncates the detailed answer to its leading runes for the
// compact display slot.
func directAnswer(answer string) string {
	runes := []rune(answer)
	if len(runes) <= directAnswerLimit {
		return answer
	}
	return string(runes[:directAnswerLimit]) + "..."
}

// languageInstruction builds a response-language directive from a BCP 47 tag.
// Unknown or empty tags produce no instruction; English needs none either.
func languageInstruction(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return ""
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return ""
	}
	return "Respond in " + name + "."
}
