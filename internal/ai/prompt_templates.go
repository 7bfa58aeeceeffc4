package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPromptInputRunes bounds the article text sent to the model.
const MaxPromptInputRunes = 6000

// PromptTemplates contains the prompt templates used for generated content
var PromptTemplates = struct {
	ArticleSummary string
}{
	ArticleSummary: `Summarize the following AI article in 3 bullet points with key takeaways. Keep it factual and concise.

%s`,
}

// BuildSummaryPrompt creates the summary prompt for one article
func BuildSummaryPrompt(title, summary string) string {
	text := strings.TrimSpace(escapeForPrompt(title) + "\n\n" + escapeForPrompt(summary))
	if utf8.RuneCountInString(text) > MaxPromptInputRunes {
		text = string([]rune(text)[:MaxPromptInputRunes])
	}
	return fmt.Sprintf(PromptTemplates.ArticleSummary, text)
}

// escapeForPrompt flattens control whitespace for use in prompts
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
