package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackInstructionTranslate(t *testing.T) {
	instruction, userTurn, ok := FallbackInstruction(ActionTranslate, &Params{
		Text:           "Hello",
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	require.True(t, ok)
	assert.Contains(t, instruction, "en")
	assert.Contains(t, instruction, "es")
	assert.Equal(t, "Hello", userTurn)
}

func TestFallbackInstructionDefaults(t *testing.T) {
	instruction, userTurn, ok := FallbackInstruction(ActionWrite, &Params{Prompt: "a haiku"})
	require.True(t, ok)
	assert.Contains(t, instruction, "neutral")
	assert.Contains(t, instruction, "plain-text")
	assert.Contains(t, instruction, "medium")
	assert.Equal(t, "a haiku", userTurn)

	instruction, _, ok = FallbackInstruction(ActionSummarize, &Params{Text: "long text"})
	require.True(t, ok)
	assert.Contains(t, instruction, "tl;dr")

	instruction, _, ok = FallbackInstruction(ActionRewrite, &Params{Text: "some text"})
	require.True(t, ok)
	assert.Contains(t, instruction, "same")
}

func TestFallbackInstructionStylingOverrides(t *testing.T) {
	instruction, _, ok := FallbackInstruction(ActionWrite, &Params{
		Prompt: "a post",
		Tone:   "formal",
		Format: "markdown",
		Length: "long",
	})
	require.True(t, ok)
	assert.Contains(t, instruction, "formal")
	assert.Contains(t, instruction, "markdown")
	assert.Contains(t, instruction, "long")
	assert.NotContains(t, instruction, "neutral")
}

func TestFallbackInstructionTextActions(t *testing.T) {
	for _, action := range []Action{ActionProofread, ActionDetectLanguage} {
		_, userTurn, ok := FallbackInstruction(action, &Params{Text: "some text"})
		require.True(t, ok, "action %s", action)
		assert.Equal(t, "some text", userTurn)
	}
}

func TestFallbackInstructionNoFallbackForPrompt(t *testing.T) {
	_, _, ok := FallbackInstruction(ActionPrompt, &Params{UserPrompt: "hi"})
	assert.False(t, ok)
}
