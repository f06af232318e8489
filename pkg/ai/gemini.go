package ai

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"google.golang.org/genai"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiOptions configures a GeminiProvider.
type GeminiOptions struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration // zero means no per-call limit

	// JSONResponse asks the model for application/json output.
	JSONResponse bool
}

// GeminiProvider implements Provider using the Genkit SDK.
type GeminiProvider struct {
	opts   GeminiOptions
	logger *slog.Logger

	initOnce sync.Once
	model    ai.Model
	initErr  error
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(opts GeminiOptions, logger *slog.Logger) *GeminiProvider {
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	return &GeminiProvider{
		opts:   opts,
		logger: logger,
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Model returns the configured model name without the plugin prefix.
func (p *GeminiProvider) Model() string {
	return p.opts.Model
}

// IsAvailable checks if the provider is configured.
func (p *GeminiProvider) IsAvailable() bool {
	return p.opts.APIKey != "" || p.model != nil
}

// init initializes the Genkit client and model.
func (p *GeminiProvider) init(ctx context.Context) error {
	p.initOnce.Do(func() {
		// A test may have injected a model already.
		if p.model != nil {
			return
		}

		if p.opts.APIKey == "" {
			p.initErr = prserrors.NewAIError(ProviderGemini, "init", "API key not set")
			return
		}

		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: p.opts.APIKey}))

		fullModelName := p.opts.Model
		if !strings.Contains(fullModelName, "/") {
			fullModelName = "googleai/" + fullModelName
		}

		p.model = googlegenai.GoogleAIModel(g, fullModelName)
		if p.model == nil {
			p.initErr = prserrors.NewAIError(ProviderGemini, "init", "failed to get model: "+fullModelName)
			return
		}

		p.logDebug("gemini provider initialized", "model", fullModelName)
	})

	return p.initErr
}

// Chat performs a single-turn completion and returns the concatenated text parts.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	if err := p.init(ctx); err != nil {
		return nil, err
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	genkitMessages := p.toGenkitMessages(messages)

	p.logDebug("sending chat request to gemini", "message_count", len(genkitMessages), "model", p.opts.Model)

	resp, err := p.model.Generate(ctx, &ai.ModelRequest{
		Messages: genkitMessages,
		Config:   p.generateConfig(),
	}, nil)
	if err != nil {
		aiErr := prserrors.NewAIErrorWithCause(ProviderGemini, "Chat", "genkit generate failed", err)
		if ctx.Err() == context.DeadlineExceeded {
			aiErr.Retryable = true
		}
		return nil, aiErr
	}

	if resp == nil || resp.Message == nil {
		return nil, prserrors.NewAIError(ProviderGemini, "Chat", "received empty response from gemini")
	}

	var content strings.Builder
	for _, part := range resp.Message.Content {
		if part.IsText() {
			content.WriteString(part.Text)
		}
	}

	res := &Response{
		Content:    content.String(),
		StopReason: string(resp.FinishReason),
	}
	if resp.Usage != nil {
		res.InputTokens = resp.Usage.InputTokens
		res.OutputTokens = resp.Usage.OutputTokens
	}

	p.logDebug("gemini response received", "chars", content.Len(), "output_tokens", res.OutputTokens)
	return res, nil
}

// generateConfig builds the request config passed through to the Google AI plugin.
func (p *GeminiProvider) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(p.opts.Temperature)),
	}
	if p.opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(p.opts.MaxOutputTokens)
	}
	if p.opts.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (p *GeminiProvider) toGenkitMessages(messages []Message) []*ai.Message {
	genkitMessages := make([]*ai.Message, len(messages))
	for i, m := range messages {
		role := ai.RoleUser
		switch m.Role {
		case "system":
			role = ai.RoleSystem
		case "assistant":
			role = ai.RoleModel
		}
		genkitMessages[i] = &ai.Message{
			Role:    role,
			Content: []*ai.Part{ai.NewTextPart(m.Content)},
		}
	}
	return genkitMessages
}

func (p *GeminiProvider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
