package models

// TaskScore is the score recorded for one task. A nil Score means the
// prediction file was missing at score time.
type TaskScore struct {
	TaskID        string   `json:"task_id"`
	MigrationType *string  `json:"migration_type"`
	Score         *float64 `json:"score"`
}

// Missing reports whether no score could be computed for the task.
func (s TaskScore) Missing() bool {
	return s.Score == nil
}

// GroupSummary aggregates the scores of all tasks sharing a migration type.
// Tasks without a type form their own group, with a nil MigrationType.
type GroupSummary struct {
	MigrationType *string  `json:"migration_type"`
	AvgScore      *float64 `json:"avg_score"`
	StdDev        *float64 `json:"std_dev"`
	CILow         *float64 `json:"ci95_low"`
	CIHigh        *float64 `json:"ci95_high"`
	SamplesFound  int      `json:"samples_found"`
	TotalSamples  int      `json:"total_samples"`
}

// Label returns a printable name for the group.
func (g GroupSummary) Label() string {
	if g.MigrationType == nil {
		return "<none>"
	}
	return *g.MigrationType
}

// ScoreReport is everything the score stage produces for one run.
type ScoreReport struct {
	Tasks  []TaskScore    `json:"tasks"`
	Groups []GroupSummary `json:"groups"`
}
