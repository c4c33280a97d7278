package reconcile

import (
	"strings"
	"unicode"
)

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences cuts text after runs of terminal punctuation that are
// followed by whitespace or the end of input. Fragments with fewer than
// minChars letters or digits are folded into a neighbour rather than
// dropped, so joining the result with spaces loses no words.
func splitSentences(text string, minChars int) []string {
	runes := []rune(strings.TrimSpace(text))
	var raw []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || runes[j] == '"' || runes[j] == '\'' || runes[j] == ')') {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			raw = append(raw, s)
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			raw = append(raw, s)
		}
	}
	return foldShort(raw, minChars)
}

func foldShort(sentences []string, minChars int) []string {
	var out []string
	pending := ""
	for _, s := range sentences {
		if pending != "" {
			s = pending + " " + s
			pending = ""
		}
		if substantive(s) >= minChars {
			out = append(out, s)
			continue
		}
		if len(out) > 0 {
			out[len(out)-1] += " " + s
			continue
		}
		pending = s
	}
	if pending != "" {
		if len(out) > 0 {
			out[len(out)-1] += " " + pending
		} else {
			out = append(out, pending)
		}
	}
	return out
}

func substantive(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func ensureTerminal(s string) string {
	trimmed := strings.TrimRight(s, "\"')")
	if trimmed == "" {
		return s
	}
	if r := []rune(trimmed); isTerminal(r[len(r)-1]) {
		return s
	}
	return s + "."
}
