package features

import (
	"strings"

	"github.com/kayz/muse/internal/logger"
)

// Assemble rebuilds a post from a base text and an explicit fragment list.
// Unlike Compose it performs no fit checks while appending and instead
// truncates as a last resort. It exists for callers that recombine
// previously selected fragments; the main pipeline always uses Compose.
func Assemble(baseText string, fragments []Fragment) string {
	var prepends []string
	var b strings.Builder
	b.WriteString(baseText)

	for _, frag := range fragments {
		if frag.Prepend {
			prepends = append(prepends, frag.Text)
			continue
		}
		b.WriteString(frag.Text)
	}

	final := b.String()
	for i := len(prepends) - 1; i >= 0; i-- {
		final = prepends[i] + "\n\n" + final
	}

	if charLen(final) > HardLimit {
		logger.Warn("assembled post too long (%d chars), truncating", charLen(final))
		runes := []rune(final)
		final = string(runes[:HardLimit-3]) + "..."
	}
	return final
}
