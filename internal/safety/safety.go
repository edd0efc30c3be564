// Package safety filters generated text against a forbidden-content list
// before it reaches the publisher. A hit aborts that publication only; the
// run itself continues to end normally without advancing state.
package safety

import (
	"fmt"
	"strings"
)

// ErrUnsafe is wrapped into the error returned by Validate on a hit.
var ErrUnsafe = fmt.Errorf("content failed safety filter")

var blacklist = []string{
	// politics and violence
	"politics", "war ", "weapon", "bomb", "massacre", "genocide",
	"terrorist", "extremist",
	// nsfw
	"nsfw", "explicit content",
	// spam and scams
	"follow me", "giveaway", "bitcoin", "crypto", "gambling",
	"click here", "limited offer",
}

// IsSafe reports whether the text is free of blacklisted terms.
// The match is a case-insensitive substring check.
func IsSafe(text string) bool {
	if text == "" {
		return true
	}
	lower := strings.ToLower(text)
	for _, word := range blacklist {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// Validate returns an error naming the first blacklisted term found.
func Validate(text string) error {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	for _, word := range blacklist {
		if strings.Contains(lower, word) {
			return fmt.Errorf("%w: matched %q", ErrUnsafe, strings.TrimSpace(word))
		}
	}
	return nil
}
