package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// DecodeJSON parses a model reply that is supposed to be JSON but may arrive
// wrapped in markdown fences or surrounded by prose. It tries a direct parse,
// then the first fenced block, then a balanced-brace scan. On failure the
// caller treats the reply as unusable and takes its deterministic path.
func DecodeJSON(reply string, target any) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fmt.Errorf("empty reply")
	}

	if err := json.Unmarshal([]byte(reply), target); err == nil {
		return nil
	}

	if m := fencedJSON.FindStringSubmatch(reply); len(m) > 1 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), target); err == nil {
			return nil
		}
	}

	if snippet := firstBalanced(reply); snippet != "" {
		if err := json.Unmarshal([]byte(snippet), target); err == nil {
			return nil
		}
	}

	if len(reply) > 100 {
		reply = reply[:100] + "..."
	}
	return fmt.Errorf("no parsable JSON in reply: %s", reply)
}

// firstBalanced returns the first balanced {...} or [...] span, tracking
// string literals and escapes so braces inside values do not confuse depth.
func firstBalanced(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := rune(s[start])
	close := '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escape := false
	for i, ch := range s[start:] {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return s[start : start+i+1]
			}
		}
	}
	return ""
}
