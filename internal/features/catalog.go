package features

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var dataFS embed.FS

// SpecialDay is a calendar-pinned occasion; only high-priority days win the
// prepend slot.
type SpecialDay struct {
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Name     string `json:"name"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// BirthdayArtist maps a calendar date to an artist's birthday.
type BirthdayArtist struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"` // MM-DD
	BirthYear int    `json:"birthYear"`
	DeathYear int    `json:"deathYear"`
}

// HistoryEvent is an on-this-day art history note.
type HistoryEvent struct {
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Short string `json:"short"`
}

// GlossaryTerm is an art vocabulary entry.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Snippet is a one-line fact used by several rotation buckets.
type Snippet struct {
	Short string `json:"short"`
}

// PopCulture links an artwork title keyword to a modern reference.
type PopCulture struct {
	Artwork string `json:"artwork"`
	Short   string `json:"short"`
}

// Comparison pairs two historically linked artists.
type Comparison struct {
	Artist1    string `json:"artist1"`
	Artist2    string `json:"artist2"`
	Comparison string `json:"comparison"`
}

// Restoration records notable conservation work on a famous piece.
type Restoration struct {
	Artwork string `json:"artwork"`
	Short   string `json:"short"`
}

// HashtagPools holds the tag candidate pools consulted in priority order.
type HashtagPools struct {
	General   []string            `json:"general"`
	Movements map[string][]string `json:"movements"`
	Artists   map[string][]string `json:"artists"`
	Museums   map[string][]string `json:"museums"`
}

// MovementDay is one entry of the day-of-week movement schedule.
type MovementDay struct {
	Day         string `json:"day"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

// Catalog is the immutable in-memory content store backing every provider.
// It is loaded once at startup; providers never touch storage afterwards.
type Catalog struct {
	SpecialDays  []SpecialDay
	Birthdays    []BirthdayArtist
	Events       []HistoryEvent
	Glossary     []GlossaryTerm
	Quotes       []Snippet
	Trivia       []Snippet
	Lessons      []Snippet
	Symbols      []Snippet
	ColorFacts   []Snippet
	Compositions []Snippet
	PopCulture   []PopCulture
	Comparisons  []Comparison
	Restorations []Restoration
	Hashtags     HashtagPools
	Movements    []MovementDay // indexed by weekday, Sunday = 0
}

func loadJSON(name string, out any) error {
	data, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// LoadCatalog reads every embedded content file into an immutable catalog.
func LoadCatalog() (*Catalog, error) {
	c := &Catalog{}

	var specialDays struct {
		Days []SpecialDay `json:"days"`
	}
	if err := loadJSON("special_days.json", &specialDays); err != nil {
		return nil, err
	}
	c.SpecialDays = specialDays.Days

	var birthdays struct {
		Artists []BirthdayArtist `json:"artists"`
	}
	if err := loadJSON("artist_birthdays.json", &birthdays); err != nil {
		return nil, err
	}
	c.Birthdays = birthdays.Artists

	var events struct {
		Events []HistoryEvent `json:"events"`
	}
	if err := loadJSON("art_history_events.json", &events); err != nil {
		return nil, err
	}
	c.Events = events.Events

	var glossary struct {
		Terms []GlossaryTerm `json:"terms"`
	}
	if err := loadJSON("art_glossary.json", &glossary); err != nil {
		return nil, err
	}
	c.Glossary = glossary.Terms

	var quotes struct {
		Quotes []Snippet `json:"quotes"`
	}
	if err := loadJSON("artist_quotes.json", &quotes); err != nil {
		return nil, err
	}
	c.Quotes = quotes.Quotes

	var trivia struct {
		Trivia []Snippet `json:"trivia"`
	}
	if err := loadJSON("art_trivia.json", &trivia); err != nil {
		return nil, err
	}
	c.Trivia = trivia.Trivia

	var lessons struct {
		Lessons []Snippet `json:"lessons"`
	}
	if err := loadJSON("technical_lessons.json", &lessons); err != nil {
		return nil, err
	}
	c.Lessons = lessons.Lessons

	var symbols struct {
		Symbols []Snippet `json:"symbols"`
	}
	if err := loadJSON("symbol_guide.json", &symbols); err != nil {
		return nil, err
	}
	c.Symbols = symbols.Symbols

	var colors struct {
		Facts []Snippet `json:"facts"`
	}
	if err := loadJSON("color_theory.json", &colors); err != nil {
		return nil, err
	}
	c.ColorFacts = colors.Facts

	var comps struct {
		Techniques []Snippet `json:"techniques"`
	}
	if err := loadJSON("composition_analysis.json", &comps); err != nil {
		return nil, err
	}
	c.Compositions = comps.Techniques

	var pop struct {
		Connections []PopCulture `json:"connections"`
	}
	if err := loadJSON("pop_culture.json", &pop); err != nil {
		return nil, err
	}
	c.PopCulture = pop.Connections

	var cmp struct {
		Comparisons []Comparison `json:"comparisons"`
	}
	if err := loadJSON("artist_comparisons.json", &cmp); err != nil {
		return nil, err
	}
	c.Comparisons = cmp.Comparisons

	var rest struct {
		Restorations []Restoration `json:"restorations"`
	}
	if err := loadJSON("restorations.json", &rest); err != nil {
		return nil, err
	}
	c.Restorations = rest.Restorations

	if err := loadJSON("hashtags.json", &c.Hashtags); err != nil {
		return nil, err
	}

	var sched struct {
		Schedule []MovementDay `json:"schedule"`
	}
	if err := loadJSON("movement_schedule.json", &sched); err != nil {
		return nil, err
	}
	c.Movements = sched.Schedule

	return c, nil
}

// MovementForDay returns the themed movement for the given weekday
// (Sunday = 0), or nil when the schedule has no entry.
func (c *Catalog) MovementForDay(weekday int) *MovementDay {
	if weekday < 0 || weekday >= len(c.Movements) {
		return nil
	}
	m := c.Movements[weekday]
	if m.Theme == "" {
		return nil
	}
	return &m
}
