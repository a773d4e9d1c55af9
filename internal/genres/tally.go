package genres

// Share is one category's portion of a tally, as a percentage in [0, 100].
type Share struct {
	Category Category
	Percent  float64
}

// Tally counts categorized genre tags, remembering the order in which categories first appeared.
//
// The zero value is ready to use. A Tally is not safe for concurrent use.
type Tally struct {
	order  []Category
	counts map[Category]int
	total  int
}

// Add categorizes raw and counts it. Repeated tags count every time.
func (t *Tally) Add(raw string) {
	if t.counts == nil {
		t.counts = make(map[Category]int)
	}
	c := Categorize(raw)
	if _, seen := t.counts[c]; !seen {
		t.order = append(t.order, c)
	}
	t.counts[c]++
	t.total++
}

// AddAll adds every tag in raws.
func (t *Tally) AddAll(raws []string) {
	for _, r := range raws {
		t.Add(r)
	}
}

// Total is the number of tags added.
func (t *Tally) Total() int { return t.total }

// Count returns how many tags fell into c.
func (t *Tally) Count(c Category) int { return t.counts[c] }

// Percentages converts counts to shares of the total tag count in first-encountered order.
//
// An empty tally yields the single share {NoGenres, 100}.
func (t *Tally) Percentages() []Share {
	if t.total == 0 {
		return []Share{{Category: NoGenres, Percent: 100}}
	}

	shares := make([]Share, 0, len(t.order))
	for _, c := range t.order {
		shares = append(shares, Share{
			Category: c,
			Percent:  float64(t.counts[c]) / float64(t.total) * 100,
		})
	}
	return shares
}
