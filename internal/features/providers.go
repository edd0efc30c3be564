package features

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SpecialDayFragment returns the prepend fragment for a high-priority
// calendar day, or nil. Lookup is date-keyed; no randomness involved.
func (c *Catalog) SpecialDayFragment(ctx Context) *Fragment {
	month := int(ctx.Now.Month())
	day := ctx.Now.Day()
	for _, d := range c.SpecialDays {
		if d.Month == month && d.Day == day && d.Priority == "high" {
			return &Fragment{Kind: KindSpecialDay, Text: d.Message, Prepend: true}
		}
	}
	return nil
}

// TodaysBirthdayArtist returns the artist born on today's date, or nil.
func (c *Catalog) TodaysBirthdayArtist(ctx Context) *BirthdayArtist {
	todayStr := fmt.Sprintf("%02d-%02d", int(ctx.Now.Month()), ctx.Now.Day())
	for i := range c.Birthdays {
		if c.Birthdays[i].BirthDate == todayStr {
			return &c.Birthdays[i]
		}
	}
	return nil
}

// BirthdayFragment produces the birthday prepend only when the artwork's
// artist name contains the birthday artist's name. The containment check is
// one-directional on purpose.
func (c *Catalog) BirthdayFragment(ctx Context) *Fragment {
	artist := c.TodaysBirthdayArtist(ctx)
	if artist == nil {
		return nil
	}
	if !strings.Contains(ctx.Artwork.Artist, artist.Name) {
		return nil
	}
	age := ctx.Now.Year() - artist.BirthYear
	msg := fmt.Sprintf("🎂 Today marks %d years since %s was born! (%d-%d)",
		age, artist.Name, artist.BirthYear, artist.DeathYear)
	return &Fragment{Kind: KindBirthday, Text: msg, Prepend: true}
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// AnniversaryFragment fires when the artwork's year is an exact multiple of
// 100 years before the current year.
func (c *Catalog) AnniversaryFragment(ctx Context) *Fragment {
	m := yearPattern.FindStringSubmatch(ctx.Artwork.Date)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	yearsAgo := ctx.Now.Year() - year
	if yearsAgo <= 0 || yearsAgo%100 != 0 {
		return nil
	}
	return &Fragment{
		Kind: KindAnniversary,
		Text: fmt.Sprintf("\n\n🎂 %d years ago!", yearsAgo),
	}
}

// GlossaryFragment draws a random term, but self-gates with its own 30%
// roll even after the rotation die has already picked this bucket. The
// compounding odds match long-standing production behavior; see DESIGN.md.
func (c *Catalog) GlossaryFragment(ctx Context) *Fragment {
	if len(c.Glossary) == 0 {
		return nil
	}
	if ctx.Rand.Float64() >= 0.3 {
		return nil
	}
	term := c.Glossary[ctx.Rand.Intn(len(c.Glossary))]
	return &Fragment{
		Kind: KindGlossary,
		Text: fmt.Sprintf("\n\n📚 Art Term: %s - %s", term.Term, term.Definition),
	}
}

// QuoteFragment returns a random artist quote.
func (c *Catalog) QuoteFragment(ctx Context) *Fragment {
	if len(c.Quotes) == 0 {
		return nil
	}
	q := c.Quotes[ctx.Rand.Intn(len(c.Quotes))]
	return &Fragment{Kind: KindQuote, Text: "\n\n💬 " + q.Short}
}

// HistoryFragment returns a random on-this-day event for today's date.
func (c *Catalog) HistoryFragment(ctx Context) *Fragment {
	month := int(ctx.Now.Month())
	day := ctx.Now.Day()
	var todays []HistoryEvent
	for _, e := range c.Events {
		if e.Month == month && e.Day == day {
			todays = append(todays, e)
		}
	}
	if len(todays) == 0 {
		return nil
	}
	e := todays[ctx.Rand.Intn(len(todays))]
	return &Fragment{Kind: KindHistory, Text: "\n\n📅 On this day: " + e.Short}
}

func (c *Catalog) randomSnippet(ctx Context, kind Kind, pool []Snippet) *Fragment {
	if len(pool) == 0 {
		return nil
	}
	s := pool[ctx.Rand.Intn(len(pool))]
	return &Fragment{Kind: kind, Text: "\n\n" + s.Short}
}

// TriviaFragment returns a random trivia snippet.
func (c *Catalog) TriviaFragment(ctx Context) *Fragment {
	return c.randomSnippet(ctx, KindTrivia, c.Trivia)
}

// LessonFragment returns a random technique lesson.
func (c *Catalog) LessonFragment(ctx Context) *Fragment {
	return c.randomSnippet(ctx, KindLesson, c.Lessons)
}

// SymbolFragment returns a random symbol-guide entry.
func (c *Catalog) SymbolFragment(ctx Context) *Fragment {
	return c.randomSnippet(ctx, KindSymbol, c.Symbols)
}

// ColorFactFragment returns a random color-theory fact.
func (c *Catalog) ColorFactFragment(ctx Context) *Fragment {
	return c.randomSnippet(ctx, KindColorFact, c.ColorFacts)
}

// CompositionFragment returns a random composition-analysis note.
func (c *Catalog) CompositionFragment(ctx Context) *Fragment {
	return c.randomSnippet(ctx, KindComposition, c.Compositions)
}

// PopCultureFragment matches the artwork title against the reference table.
// The fuzzy match checks containment in both directions.
func (c *Catalog) PopCultureFragment(ctx Context) *Fragment {
	title := strings.ToLower(ctx.Artwork.Title)
	if title == "" {
		return nil
	}
	for _, p := range c.PopCulture {
		key := strings.ToLower(p.Artwork)
		if strings.Contains(title, key) || strings.Contains(key, title) {
			return &Fragment{Kind: KindPopCulture, Text: "\n\n" + p.Short}
		}
	}
	return nil
}

// ComparisonFragment matches the artist name against the rivalry-pair table.
func (c *Catalog) ComparisonFragment(ctx Context) *Fragment {
	artist := ctx.Artwork.Artist
	for _, cmp := range c.Comparisons {
		if strings.Contains(artist, cmp.Artist1) || strings.Contains(artist, cmp.Artist2) {
			return &Fragment{Kind: KindComparison, Text: "\n\n⚖️ " + cmp.Comparison}
		}
	}
	return nil
}

// RestorationFragment matches the artwork title against known restorations.
func (c *Catalog) RestorationFragment(ctx Context) *Fragment {
	title := strings.ToLower(ctx.Artwork.Title)
	for _, r := range c.Restorations {
		if strings.Contains(title, strings.ToLower(r.Artwork)) {
			return &Fragment{Kind: KindRestoration, Text: "\n\n" + r.Short}
		}
	}
	return nil
}

// SelectHashtags picks up to three tags in priority order: one general
// (always), one for the movement, one for the artist, one for the museum.
func (c *Catalog) SelectHashtags(ctx Context) []string {
	var selected []string

	if len(c.Hashtags.General) > 0 {
		selected = append(selected, c.Hashtags.General[ctx.Rand.Intn(len(c.Hashtags.General))])
	}

	if ctx.Movement != "" {
		if pool, ok := c.Hashtags.Movements[ctx.Movement]; ok && len(pool) > 0 {
			selected = append(selected, pool[ctx.Rand.Intn(len(pool))])
		}
	}

	// Sorted keys keep the "first matching artist" rule deterministic.
	artistKeys := make([]string, 0, len(c.Hashtags.Artists))
	for key := range c.Hashtags.Artists {
		artistKeys = append(artistKeys, key)
	}
	sort.Strings(artistKeys)
	for _, key := range artistKeys {
		pool := c.Hashtags.Artists[key]
		if len(pool) > 0 && strings.Contains(ctx.Artwork.Artist, key) {
			selected = append(selected, pool[ctx.Rand.Intn(len(pool))])
			break
		}
	}

	if pool, ok := c.Hashtags.Museums[ctx.Artwork.Museum]; ok && len(pool) > 0 {
		selected = append(selected, pool[ctx.Rand.Intn(len(pool))])
	}

	if len(selected) > 3 {
		selected = selected[:3]
	}
	return selected
}

// HashtagFragment formats the selected tags as the trailing block.
func (c *Catalog) HashtagFragment(ctx Context) *Fragment {
	tags := c.SelectHashtags(ctx)
	if len(tags) == 0 {
		return nil
	}
	return &Fragment{Kind: KindHashtags, Text: "\n\n" + strings.Join(tags, " ")}
}
