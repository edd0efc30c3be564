// Package features holds the enrichment catalog and the budget-constrained
// composer that turn a generated caption into a finished post. Each catalog
// entry yields at most one formatted fragment per composition; the composer
// decides which fragments fit under the character budget.
package features

import (
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/kayz/muse/internal/museum"
)

// Kind identifies an enrichment fragment. The string values are stored in
// analytics rows, so they are stable.
type Kind string

const (
	KindSpecialDay  Kind = "specialDay"
	KindBirthday    Kind = "birthday"
	KindAnniversary Kind = "anniversary"
	KindGlossary    Kind = "glossary"
	KindQuote       Kind = "quote"
	KindHistory     Kind = "history"
	KindTrivia      Kind = "trivia"
	KindLesson      Kind = "lesson"
	KindSymbol      Kind = "symbol"
	KindColorFact   Kind = "colorFact"
	KindComposition Kind = "composition"
	KindPopCulture  Kind = "popCulture"
	KindComparison  Kind = "comparison"
	KindRestoration Kind = "restoration"
	KindHashtags    Kind = "hashtags"
)

// Fragment is a formatted snippet ready to be attached to the post text.
// Appended fragments carry their leading "\n\n" separator; prepended ones
// get the separator added by the composer.
type Fragment struct {
	Kind    Kind
	Text    string
	Prepend bool
}

// Context carries everything a provider may consult when deciding whether
// to produce a fragment.
type Context struct {
	Artwork  museum.Artwork
	Movement string
	Now      time.Time
	Rand     *rand.Rand
}

// Result is the outcome of one composition.
type Result struct {
	FinalText   string
	FinalLength int
	Used        []Kind // insertion order, not priority order
}

// Has reports whether the given kind was applied.
func (r *Result) Has(k Kind) bool {
	for _, u := range r.Used {
		if u == k {
			return true
		}
	}
	return false
}

// charLen counts characters the way the platform does, per rune rather than
// per byte; emoji in fragments would otherwise burn the budget three times
// over.
func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
