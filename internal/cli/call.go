package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nanobridge-dev/nanobridge/pkg/client"
)

// callOptions holds the flags shared by every call invocation.
type callOptions struct {
	bridgeURL string
	apiKey    string

	userPrompt     string
	systemPrompt   string
	prompt         string
	text           string
	tone           string
	format         string
	length         string
	summaryType    string
	sourceLanguage string
	targetLanguage string

	sessionID       string
	forceNewSession bool
}

// NewCallCmd creates the call command
func NewCallCmd() *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call <action>",
		Short: "Invoke a capability on a running bridge",
		Long: `Invoke one capability on a running bridge and print the JSON result.

Actions: prompt, write, summarize, translate, rewrite, proofread, detect-language

Examples:
  nanobridge call prompt --user-prompt "Write a haiku about autumn"
  nanobridge call translate --text "Hello" --target-language es
  nanobridge call summarize --text "$(cat article.txt)" --length short`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.bridgeURL, "bridge-url", "http://localhost:3333", "Bridge base URL")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key, if the bridge requires one")
	cmd.Flags().StringVar(&opts.userPrompt, "user-prompt", "", "User prompt (prompt action)")
	cmd.Flags().StringVar(&opts.systemPrompt, "system-prompt", "", "System prompt (prompt action)")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Writing prompt (write action)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Input text")
	cmd.Flags().StringVar(&opts.tone, "tone", "", "Tone (write, rewrite)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format")
	cmd.Flags().StringVar(&opts.length, "length", "", "Output length")
	cmd.Flags().StringVar(&opts.summaryType, "type", "", "Summary type (summarize)")
	cmd.Flags().StringVar(&opts.sourceLanguage, "source-language", "", "Source language (translate)")
	cmd.Flags().StringVar(&opts.targetLanguage, "target-language", "", "Target language (translate)")
	cmd.Flags().StringVar(&opts.sessionID, "session-id", "", "Session to continue")
	cmd.Flags().BoolVar(&opts.forceNewSession, "force-new-session", false, "Destroy and recreate the session before use")

	return cmd
}

func runCall(ctx context.Context, action string, opts *callOptions) error {
	c := client.New(client.Config{
		BridgeURL: opts.bridgeURL,
		APIKey:    opts.apiKey,
	})

	sessionOpts := client.SessionOptions{
		SessionID:       opts.sessionID,
		ForceNewSession: opts.forceNewSession,
	}

	var result *client.Result
	var err error

	switch action {
	case "prompt":
		result, err = c.Prompt(ctx, &client.PromptRequest{
			SessionOptions: sessionOpts,
			UserPrompt:     opts.userPrompt,
			SystemPrompt:   opts.systemPrompt,
		})
	case "write":
		result, err = c.Write(ctx, &client.WriteRequest{
			SessionOptions: sessionOpts,
			Prompt:         opts.prompt,
			Tone:           opts.tone,
			Format:         opts.format,
			Length:         opts.length,
		})
	case "summarize":
		result, err = c.Summarize(ctx, &client.SummarizeRequest{
			SessionOptions: sessionOpts,
			Text:           opts.text,
			Type:           opts.summaryType,
			Format:         opts.format,
			Length:         opts.length,
		})
	case "translate":
		result, err = c.Translate(ctx, &client.TranslateRequest{
			SessionOptions: sessionOpts,
			Text:           opts.text,
			SourceLanguage: opts.sourceLanguage,
			TargetLanguage: opts.targetLanguage,
		})
	case "rewrite":
		result, err = c.Rewrite(ctx, &client.RewriteRequest{
			SessionOptions: sessionOpts,
			Text:           opts.text,
			Tone:           opts.tone,
			Format:         opts.format,
			Length:         opts.length,
		})
	case "proofread":
		result, err = c.Proofread(ctx, &client.TextRequest{
			SessionOptions: sessionOpts,
			Text:           opts.text,
		})
	case "detect-language":
		result, err = c.DetectLanguage(ctx, &client.TextRequest{
			SessionOptions: sessionOpts,
			Text:           opts.text,
		})
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
