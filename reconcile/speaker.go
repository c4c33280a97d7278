package reconcile

import "strings"

var speakerPrefixes = []string{"speaker", "spk"}

// CanonicalSpeaker maps a raw diarizer label onto the A/B/C alphabet.
// Vendor prefixes such as "SPEAKER_" or "spk" are stripped before the
// rule is applied, so "SPEAKER_1" and "B" both become "B" rather than the
// "A" a plain contains-"a" test would give for "SPEAKER_1". Unknown labels
// are returned uppercased. The mapping is total and idempotent.
func CanonicalSpeaker(raw string) string {
	trimmed := strings.TrimSpace(raw)
	core := stripSpeakerPrefix(strings.ToLower(trimmed))

	switch {
	case strings.Contains(core, "a") || core == "0":
		return "A"
	case strings.Contains(core, "b") || core == "1":
		return "B"
	case strings.Contains(core, "c") || core == "2":
		return "C"
	}
	if core == "" {
		return strings.ToUpper(trimmed)
	}
	return strings.ToUpper(core)
}

func stripSpeakerPrefix(s string) string {
	for {
		stripped := false
		for _, p := range speakerPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimLeft(strings.TrimPrefix(s, p), "_- ")
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}
