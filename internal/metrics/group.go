package metrics

import (
	"sort"

	"github.com/spboyer/migbench/internal/models"
)

// GroupScores aggregates scores by migration type. Missing scores count
// towards TotalSamples only. A group where every score is missing has a nil
// AvgScore. Groups are ordered by type name, with the untyped group last.
func GroupScores(scores []models.TaskScore) []models.GroupSummary {
	type bucket struct {
		label  *string
		values []float64
		total  int
	}

	var untyped *bucket
	byType := map[string]*bucket{}
	for _, s := range scores {
		var b *bucket
		if s.MigrationType == nil {
			if untyped == nil {
				untyped = &bucket{}
			}
			b = untyped
		} else {
			b = byType[*s.MigrationType]
			if b == nil {
				b = &bucket{label: s.MigrationType}
				byType[*s.MigrationType] = b
			}
		}
		b.total++
		if s.Score != nil {
			b.values = append(b.values, *s.Score)
		}
	}

	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]*bucket, 0, len(names)+1)
	for _, name := range names {
		ordered = append(ordered, byType[name])
	}
	if untyped != nil {
		ordered = append(ordered, untyped)
	}

	groups := make([]models.GroupSummary, 0, len(ordered))
	for _, b := range ordered {
		g := models.GroupSummary{
			MigrationType: b.label,
			SamplesFound:  len(b.values),
			TotalSamples:  b.total,
		}
		if len(b.values) > 0 {
			st := Describe(b.values)
			g.AvgScore = &st.Mean
			g.StdDev = &st.StdDev
			g.CILow = &st.CILow
			g.CIHigh = &st.CIHigh
		}
		groups = append(groups, g)
	}
	return groups
}
