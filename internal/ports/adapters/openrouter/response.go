package openrouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var errEmptyContent = errors.New("openrouter: empty content")

// contentText accepts either a plain string or the array-of-parts form some
// providers return, concatenating the text parts.
func contentText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("openrouter: unexpected content %s", truncate(string(raw), 80))
	}
	var b strings.Builder
	for _, p := range parts {
		var part struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(p, &part) == nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyContent
	}
	return b.String(), nil
}

// extractJSONObject returns the outermost {...} of a model reply, tolerating
// code fences and prose around it.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errEmptyContent
	}
	if rest, ok := strings.CutPrefix(t, "```"); ok {
		if _, body, found := strings.Cut(rest, "\n"); found {
			rest = body
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		t = strings.TrimSpace(rest)
	}

	lo, hi := strings.IndexByte(t, '{'), strings.LastIndexByte(t, '}')
	if lo < 0 || hi <= lo {
		return "", fmt.Errorf("openrouter: no JSON object in reply: %q", truncate(t, 200))
	}
	return t[lo : hi+1], nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`), "Bearer [REDACTED]"},
	{regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`), "${1}[REDACTED]"},
	{regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`), "${1}[REDACTED]"},
}

// redactSecrets scrubs the API key and anything that looks like a credential
// from text that may end up in an error message.
func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	if apiKey != "" {
		s = strings.ReplaceAll(s, apiKey, "[REDACTED]")
	}
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}
