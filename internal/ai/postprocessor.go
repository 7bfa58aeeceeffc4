package ai

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type PostProcessor struct {
	maxLength        int
	minContentLength int
	controlChars     *regexp.Regexp
	bulletPrefix     *regexp.Regexp
	scriptTags       *regexp.Regexp
}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{
		maxLength:        2000,
		minContentLength: 10,
		controlChars:     regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`),
		bulletPrefix:     regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`),
		scriptTags:       regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	}
}

// ProcessSummary validates and cleans generated summary text. Bullet
// markers are normalized to "- " one per line.
func (p *PostProcessor) ProcessSummary(text string) (string, error) {
	text = p.stripCodeFence(strings.TrimSpace(text))
	text = p.scriptTags.ReplaceAllString(text, "")
	text = p.controlChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if loc := p.bulletPrefix.FindStringIndex(line); loc != nil {
			line = "- " + line[loc[1]:]
		}
		lines = append(lines, line)
	}

	cleaned := strings.Join(lines, "\n")
	if utf8.RuneCountInString(cleaned) < p.minContentLength {
		return "", fmt.Errorf("summary too short, minimum %d characters required", p.minContentLength)
	}
	if utf8.RuneCountInString(cleaned) > p.maxLength {
		cleaned = string([]rune(cleaned)[:p.maxLength-3]) + "..."
	}
	return cleaned, nil
}

// stripCodeFence removes a markdown code block wrapper the model sometimes adds.
func (p *PostProcessor) stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
