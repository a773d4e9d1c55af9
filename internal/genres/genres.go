// Package genres maps free-text genre tags to a fixed set of coarse categories and tallies them.
package genres

import "strings"

// Category is a coarse genre bucket.
type Category string

const (
	Pop        Category = "Pop"
	Rock       Category = "Rock"
	HipHop     Category = "Hip Hop"
	Electronic Category = "Electronic"
	Country    Category = "Country"
	Jazz       Category = "Jazz"
	Classical  Category = "Classical"
	Other      Category = "Other"

	// NoGenres is the pseudo-category reported when a playlist yields no genre tags at all.
	NoGenres Category = "No genres found"
)

type rule struct {
	category Category
	keywords []string
}

// table is matched in order; the first category with a keyword contained in the tag wins.
var table = []rule{
	{Pop, []string{"pop"}},
	{Rock, []string{"rock"}},
	{HipHop, []string{"hip hop", "rap"}},
	{Electronic, []string{"electronic", "edm"}},
	{Country, []string{"country"}},
	{Jazz, []string{"jazz"}},
	{Classical, []string{"classical"}},
}

// Categorize returns the category for a raw genre tag, or [Other] when no keyword matches.
func Categorize(raw string) Category {
	g := strings.ToLower(raw)
	for _, r := range table {
		for _, kw := range r.keywords {
			if strings.Contains(g, kw) {
				return r.category
			}
		}
	}
	return Other
}

// Categories lists every real category in table order, followed by [Other].
func Categories() []Category {
	out := make([]Category, 0, len(table)+1)
	for _, r := range table {
		out = append(out, r.category)
	}
	return append(out, Other)
}

// Keywords returns a copy of the substrings mapped to c.
func Keywords(c Category) []string {
	for _, r := range table {
		if r.category == c {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}
