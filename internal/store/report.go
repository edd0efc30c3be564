package store

import (
	"fmt"
	"strings"
	"time"
)

// NameCount pairs a name with its post count.
type NameCount struct {
	Name  string
	Count int
}

// Report aggregates posting analytics over the whole history.
type Report struct {
	TotalPosts     int
	PostsThisMonth int
	AvgLength      float64
	BirthdayPosts  int
	GlossaryPosts  int
	TopArtists     []NameCount
	Museums        []NameCount
	MostActiveDay  string // weekday name
	MonthlyColors  []NameCount
}

// BuildReport computes the analytics report. Monthly figures use the month
// containing now.
func (s *Store) BuildReport(now time.Time) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep := &Report{}
	month := now.UTC().Format("2006-01")

	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(tweet_length), 0),
			COALESCE(SUM(has_birthday), 0), COALESCE(SUM(has_glossary), 0)
		FROM posts
	`)
	if err := row.Scan(&rep.TotalPosts, &rep.AvgLength, &rep.BirthdayPosts, &rep.GlossaryPosts); err != nil {
		return nil, err
	}

	row = s.db.QueryRow(`
		SELECT COUNT(*) FROM posts WHERE strftime('%Y-%m', posted_at) = ?
	`, month)
	if err := row.Scan(&rep.PostsThisMonth); err != nil {
		return nil, err
	}

	var err error
	rep.TopArtists, err = s.topNames("artists", 5)
	if err != nil {
		return nil, err
	}
	rep.Museums, err = s.topNames("museums", 10)
	if err != nil {
		return nil, err
	}

	// sqlite %w: 0=Sunday..6=Saturday
	row = s.db.QueryRow(`
		SELECT strftime('%w', posted_at) AS day, COUNT(*) AS n
		FROM posts GROUP BY day ORDER BY n DESC LIMIT 1
	`)
	var day string
	var n int
	if scanErr := row.Scan(&day, &n); scanErr == nil {
		if idx := int(day[0] - '0'); idx >= 0 && idx <= 6 {
			rep.MostActiveDay = time.Weekday(idx).String()
		}
	}

	rows, err := s.db.Query(`
		SELECT dominant_color, COUNT(*) AS n
		FROM posts
		WHERE strftime('%Y-%m', posted_at) = ? AND dominant_color != ''
		GROUP BY dominant_color ORDER BY n DESC
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		rep.MonthlyColors = append(rep.MonthlyColors, nc)
	}
	return rep, rows.Err()
}

func (s *Store) topNames(table string, limit int) ([]NameCount, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT name, post_count FROM %s
		ORDER BY post_count DESC, name ASC
		LIMIT ?
	`, table), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

// Format renders the report for terminal output.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Posts: %d total, %d this month\n", r.TotalPosts, r.PostsThisMonth)
	fmt.Fprintf(&b, "Average length: %.1f chars\n", r.AvgLength)
	fmt.Fprintf(&b, "Birthday posts: %d, glossary posts: %d\n", r.BirthdayPosts, r.GlossaryPosts)
	if r.MostActiveDay != "" {
		fmt.Fprintf(&b, "Most active day: %s\n", r.MostActiveDay)
	}
	if len(r.TopArtists) > 0 {
		b.WriteString("Top artists:\n")
		for _, nc := range r.TopArtists {
			fmt.Fprintf(&b, "  %-30s %d\n", nc.Name, nc.Count)
		}
	}
	if len(r.Museums) > 0 {
		b.WriteString("Museums:\n")
		for _, nc := range r.Museums {
			fmt.Fprintf(&b, "  %-30s %d\n", nc.Name, nc.Count)
		}
	}
	if len(r.MonthlyColors) > 0 {
		b.WriteString("Colors this month:\n")
		for _, nc := range r.MonthlyColors {
			fmt.Fprintf(&b, "  %-12s %d\n", nc.Name, nc.Count)
		}
	}
	return b.String()
}
