package models

import "strings"

// MigrationTask is one unit of migration work: a snippet to migrate plus
// library/language metadata and optional ground truth.
//
// Tasks are built by the manifest loader and treated as read-only afterwards.
// TaskID keys every artifact a run produces for the task.
type MigrationTask struct {
	TaskID     string `json:"task_id"`
	Language   string `json:"language"`
	SourceLib  string `json:"source_lib"`
	TargetLib  string `json:"target_lib"`
	RepoName   string `json:"repo_name"`
	CodeBefore string `json:"code_before"`

	// CodeAfter is the ground truth. nil means absent, which is different
	// from an empty ground truth.
	CodeAfter *string `json:"code_after,omitempty"`

	// MigrationType is a free-form category label used for aggregation only.
	MigrationType *string `json:"migration_type,omitempty"`
}

// HasGroundTruth reports whether the task carries a code_after with
// something other than whitespace in it.
func (t *MigrationTask) HasGroundTruth() bool {
	return t.CodeAfter != nil && strings.TrimSpace(*t.CodeAfter) != ""
}

// TypeLabel returns the migration type or "" when it is absent.
func (t *MigrationTask) TypeLabel() string {
	if t.MigrationType == nil {
		return ""
	}
	return *t.MigrationType
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
