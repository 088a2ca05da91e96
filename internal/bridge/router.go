package bridge

import "strings"

// Target is the result of routing an inbound message. When Explicit is
// false the caller substitutes the registry default and Text is the
// original message unchanged.
type Target struct {
	Profile  string
	Explicit bool
	Text     string
}

// ResolveTarget extracts an explicit profile prefix from a user message.
//
// Two forms are recognized, checked in order:
//
//	/p <profile> <message>
//	<profile>: <message>
//
// Profile prefixes match in registry order, not longest-match: if one
// profile name is a prefix of another, the earlier one wins.
func ResolveTarget(text string, reg *Registry) Target {
	// /p <profile> <message>
	if rest, ok := strings.CutPrefix(text, "/p "); ok {
		parts := strings.Fields(strings.TrimSpace(rest))
		if len(parts) >= 1 && reg.Has(parts[0]) {
			remainder := ""
			if len(parts) >= 2 {
				// Preserve the original spacing of the message body.
				trimmed := strings.TrimSpace(rest)
				remainder = strings.TrimSpace(trimmed[len(parts[0]):])
			}
			return Target{Profile: parts[0], Explicit: true, Text: remainder}
		}
	}

	// <profile>: <message>
	for _, profile := range reg.Profiles() {
		prefix := profile + ":"
		if strings.HasPrefix(text, prefix) {
			return Target{
				Profile:  profile,
				Explicit: true,
				Text:     strings.TrimSpace(text[len(prefix):]),
			}
		}
	}

	return Target{Text: text}
}
