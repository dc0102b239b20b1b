package wordquiz

import (
	"math/rand"
	"time"
)

// Select filters the pool by the criteria and draws up to count rows
// uniformly at random without replacement. The result carries no ordering
// guarantee; the layout engine consumes it in the order returned.
//
// rng may be nil, in which case a time-seeded source is used. Passing a fixed
// source makes the draw reproducible.
func Select(pool *Table, criteria SelectionCriteria, count int, rng *rand.Rand) (SampledSet, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, &ValidationError{Msg: "question count must be at least 1"}
	}
	if col := criteria.RequiredColumn(); col != "" {
		switch {
		case col == ColumnNumber && !pool.HasNumber,
			col == ColumnSection && !pool.HasSection:
			return nil, &SchemaError{Missing: []string{col}}
		}
	}
	if pool.MultiSource && !criteria.AllowsMultiSource() {
		return nil, &ValidationError{Msg: "range selection works on a single word list only"}
	}

	// Records whose governing column failed coercion at load time simply
	// never match; dropping them silently is the intended tolerance for
	// noisy spreadsheets.
	var filtered []WordRecord
	for _, r := range pool.Records {
		if criteria.matches(r) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, &EmptySelectionError{Criteria: criteria.Describe()}
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	n := len(filtered)
	if count < n {
		n = count
	}
	sample := make(SampledSet, 0, n)
	for _, idx := range rng.Perm(len(filtered))[:n] {
		sample = append(sample, filtered[idx])
	}

	VerboseLog("Selected %d of %d matching rows (%s)", n, len(filtered), criteria.Describe())
	return sample, nil
}
