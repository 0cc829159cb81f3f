package resumes

import "strings"

const titleMaxRunes = 30

// DeriveTitle builds a list title from the first words of the essay:
// whitespace collapsed to single spaces, truncated to 30 runes with an
// ellipsis when longer.
func DeriveTitle(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= titleMaxRunes {
		return collapsed
	}
	return string(runes[:titleMaxRunes]) + "..."
}
