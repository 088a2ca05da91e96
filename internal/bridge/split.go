package bridge

// SplitMessage splits text into chunks of at most maxLen runes, preferring
// to break at the last newline before the limit and falling back to a hard
// cut when none exists. Newlines consumed at split points are dropped.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			chunks = append(chunks, string(runes))
			break
		}

		splitAt := lastNewline(runes, maxLen)
		if splitAt == -1 {
			splitAt = maxLen
		}
		chunks = append(chunks, string(runes[:splitAt]))

		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	return chunks
}

// lastNewline returns the index of the last '\n' in runes[:limit], or -1.
func lastNewline(runes []rune, limit int) int {
	for i := limit - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}
