package capability

import (
	"context"
	"fmt"

	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
	"github.com/nanobridge-dev/nanobridge/pkg/llm"
)

// Provider implements one specialized action. Each provider reports its own
// availability and executes a single request against the backend; session
// state never lives here, only in the prompting path.
type Provider interface {
	Action() Action
	Availability(ctx context.Context) error
	Execute(ctx context.Context, params *Params) (string, error)
}

const (
	defaultTone          = "neutral"
	defaultFormat        = "plain-text"
	defaultLength        = "medium"
	defaultSummaryType   = "tl;dr"
	defaultRewriteLength = "same"
	defaultSourceLang    = "en"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// llmProvider is the shared shape of every specialized provider: a backend
// client, an enabled switch, and an action-specific instruction builder.
type llmProvider struct {
	action   Action
	client   llm.Client
	enabled  bool
	instruct func(params *Params) (system, user string)
}

func (p *llmProvider) Action() Action { return p.action }

func (p *llmProvider) Availability(ctx context.Context) error {
	if !p.enabled {
		return apperrors.New(apperrors.ErrCodeUnavailable,
			fmt.Sprintf("%s capability is not available", p.action), nil)
	}
	return nil
}

func (p *llmProvider) Execute(ctx context.Context, params *Params) (string, error) {
	if err := p.Availability(ctx); err != nil {
		return "", err
	}

	system, user := p.instruct(params)
	result, err := p.client.Generate(ctx, &llm.GenerateRequest{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Temperature: params.Temperature,
		TopK:        params.TopK,
	})
	if err != nil {
		// Backend errors that already carry a classification (still
		// downloading, needs interaction) pass through untouched.
		if apperrors.Code(err) != "" {
			return "", err
		}
		return "", apperrors.New(apperrors.ErrCodeExecutionFailed,
			fmt.Sprintf("%s capability failed", p.action), err)
	}
	return result, nil
}

// NewWriterProvider builds content from a writing prompt with the requested
// tone, format and length.
func NewWriterProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionWrite,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := fmt.Sprintf(
				"You are a writing assistant. Write content with a %s tone, in %s format, of %s length. Return only the written content.",
				orDefault(p.Tone, defaultTone),
				orDefault(p.Format, defaultFormat),
				orDefault(p.Length, defaultLength))
			return system, p.Prompt
		},
	}
}

// NewSummarizerProvider condenses text.
func NewSummarizerProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionSummarize,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := fmt.Sprintf(
				"You are a summarization assistant. Produce a %s summary, in %s format, of %s length. Return only the summary.",
				orDefault(p.Type, defaultSummaryType),
				orDefault(p.Format, defaultFormat),
				orDefault(p.Length, defaultLength))
			return system, p.Text
		},
	}
}

// NewTranslatorProvider translates text between languages.
func NewTranslatorProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionTranslate,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := fmt.Sprintf(
				"You are a translation assistant. Translate the user's text from %s to %s. Return only the translated text.",
				orDefault(p.SourceLanguage, defaultSourceLang),
				p.TargetLanguage)
			return system, p.Text
		},
	}
}

// NewRewriterProvider rephrases text while preserving its meaning.
func NewRewriterProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionRewrite,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := fmt.Sprintf(
				"You are a rewriting assistant. Rewrite the user's text with a %s tone, in %s format, keeping %s length. Preserve the meaning. Return only the rewritten text.",
				orDefault(p.Tone, defaultTone),
				orDefault(p.Format, defaultFormat),
				orDefault(p.Length, defaultRewriteLength))
			return system, p.Text
		},
	}
}

// NewProofreaderProvider corrects grammar, spelling and punctuation.
func NewProofreaderProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionProofread,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := "You are a proofreading assistant. Correct grammar, spelling and punctuation in the user's text. Return only the corrected text."
			return system, p.Text
		},
	}
}

// NewLanguageDetectorProvider identifies the language of a text.
func NewLanguageDetectorProvider(client llm.Client, enabled bool) Provider {
	return &llmProvider{
		action:  ActionDetectLanguage,
		client:  client,
		enabled: enabled,
		instruct: func(p *Params) (string, string) {
			system := "You are a language detection assistant. Identify the language of the user's text and return only its BCP 47 language code, such as \"en\" or \"es\"."
			return system, p.Text
		},
	}
}
