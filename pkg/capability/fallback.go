package capability

import "fmt"

// FallbackInstruction builds the synthetic system instruction that reproduces
// a specialized action through plain prompting, and the text to send as the
// user turn. Returns ok=false for actions that have no fallback.
func FallbackInstruction(action Action, params *Params) (instruction, userTurn string, ok bool) {
	switch action {
	case ActionWrite:
		return fmt.Sprintf(
			"You are a professional writer. Write content based on the user's request with a %s tone, in %s format, of %s length. Respond only with the written content, no preamble.",
			orDefault(params.Tone, defaultTone),
			orDefault(params.Format, defaultFormat),
			orDefault(params.Length, defaultLength)), params.Prompt, true

	case ActionSummarize:
		return fmt.Sprintf(
			"You are a summarization expert. Summarize the text the user provides as a %s summary, in %s format, of %s length. Respond only with the summary.",
			orDefault(params.Type, defaultSummaryType),
			orDefault(params.Format, defaultFormat),
			orDefault(params.Length, defaultLength)), params.Text, true

	case ActionTranslate:
		return fmt.Sprintf(
			"You are a professional translator. Translate the text the user provides from %s to %s. Respond only with the translated text, nothing else.",
			orDefault(params.SourceLanguage, defaultSourceLang),
			params.TargetLanguage), params.Text, true

	case ActionRewrite:
		return fmt.Sprintf(
			"You are an editing expert. Rewrite the text the user provides with a %s tone, in %s format, keeping %s length, without changing its meaning. Respond only with the rewritten text.",
			orDefault(params.Tone, defaultTone),
			orDefault(params.Format, defaultFormat),
			orDefault(params.Length, defaultRewriteLength)), params.Text, true

	case ActionProofread:
		return "You are a proofreading expert. Correct all grammar, spelling and punctuation mistakes in the text the user provides. Respond only with the corrected text.",
			params.Text, true

	case ActionDetectLanguage:
		return "You are a language identification expert. Respond only with the BCP 47 language code of the language the user's text is written in, such as \"en\" or \"es\".",
			params.Text, true

	default:
		return "", "", false
	}
}
