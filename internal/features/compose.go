package features

import (
	"math/rand"
	"time"

	"github.com/kayz/muse/internal/logger"
	"github.com/kayz/muse/internal/museum"
)

const (
	// HardLimit is the absolute post-length ceiling.
	HardLimit = 280
	// SafeLimit is the acceptance threshold for optional fragments, leaving
	// headroom for the trailing hashtag block.
	SafeLimit = 240
)

// rotationBucket maps a cumulative probability threshold to the provider it
// selects. The table is consulted with a single uniform draw; the remaining
// [0.90, 1.0) range deliberately selects nothing.
type rotationBucket struct {
	threshold float64
	kind      Kind
	provide   func(*Catalog, Context) *Fragment
}

var rotationTable = []rotationBucket{
	{0.25, KindGlossary, (*Catalog).GlossaryFragment},
	{0.45, KindQuote, (*Catalog).QuoteFragment},
	{0.60, KindHistory, (*Catalog).HistoryFragment},
	{0.70, KindTrivia, (*Catalog).TriviaFragment},
	{0.75, KindLesson, (*Catalog).LessonFragment},
	{0.80, KindSymbol, (*Catalog).SymbolFragment},
	{0.85, KindColorFact, (*Catalog).ColorFactFragment},
	{0.90, KindComposition, (*Catalog).CompositionFragment},
}

// Composer assembles the final post text from a base caption and the
// catalog, under the character budget. The random source and clock are
// injected so compositions are reproducible in tests.
type Composer struct {
	catalog *Catalog
	rand    *rand.Rand
	now     func() time.Time
}

// NewComposer creates a composer. rng and now may be nil for production
// defaults.
func NewComposer(catalog *Catalog, rng *rand.Rand, now func() time.Time) *Composer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Composer{catalog: catalog, rand: rng, now: now}
}

// Compose runs the tiered selection. Every fragment is accepted only if the
// resulting text stays within SafeLimit; the trailing hashtag block alone is
// judged against HardLimit. Compose never truncates: length safety comes
// entirely from the fit checks.
func (cp *Composer) Compose(baseText string, art museum.Artwork, movement string) Result {
	ctx := Context{
		Artwork:  art,
		Movement: movement,
		Now:      cp.now(),
		Rand:     cp.rand,
	}

	res := Result{FinalText: baseText}
	current := baseText

	// Tier 1: prepend slot, special day beats birthday, at most one wins.
	tier1Used := false
	if frag := cp.catalog.SpecialDayFragment(ctx); frag != nil {
		if test := frag.Text + "\n\n" + current; charLen(test) <= SafeLimit {
			current = test
			res.Used = append(res.Used, KindSpecialDay)
			tier1Used = true
		}
	}
	if !tier1Used {
		if frag := cp.catalog.BirthdayFragment(ctx); frag != nil {
			if test := frag.Text + "\n\n" + current; charLen(test) <= SafeLimit {
				current = test
				res.Used = append(res.Used, KindBirthday)
				tier1Used = true
			}
		}
	}

	// Tier 2: anniversary, only when no prepend fragment won.
	if !tier1Used {
		if frag := cp.catalog.AnniversaryFragment(ctx); frag != nil {
			if test := current + frag.Text; charLen(test) <= SafeLimit {
				current = test
				res.Used = append(res.Used, KindAnniversary)
			}
		}
	}

	// Tier 3: one rotation die draw, no re-draw and no bucket fallback.
	roll := cp.rand.Float64()
	for _, bucket := range rotationTable {
		if roll >= bucket.threshold {
			continue
		}
		if frag := bucket.provide(cp.catalog, ctx); frag != nil {
			if test := current + frag.Text; charLen(test) <= SafeLimit {
				current = test
				res.Used = append(res.Used, frag.Kind)
			}
		}
		break
	}

	// Tier 4: context-matched add-ons, each gated by its own fit check.
	for _, provide := range []func(*Catalog, Context) *Fragment{
		(*Catalog).PopCultureFragment,
		(*Catalog).ComparisonFragment,
		(*Catalog).RestorationFragment,
	} {
		if frag := provide(cp.catalog, ctx); frag != nil {
			if test := current + frag.Text; charLen(test) <= SafeLimit {
				current = test
				res.Used = append(res.Used, frag.Kind)
			}
		}
	}

	// Tier 5: hashtags, always attempted, judged against the hard limit.
	if frag := cp.catalog.HashtagFragment(ctx); frag != nil {
		if test := current + frag.Text; charLen(test) <= HardLimit {
			current = test
			res.Used = append(res.Used, KindHashtags)
		} else {
			logger.Debug("hashtags dropped, would exceed hard limit (%d chars)", charLen(test))
		}
	}

	res.FinalText = current
	res.FinalLength = charLen(current)
	return res
}
