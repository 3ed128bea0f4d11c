package domain

import "time"

// ResolutionCase classifies how a candidate file relates to the corpus index.
type ResolutionCase string

const (
	// CaseSkip: the exact content (by fingerprint) was already extracted,
	// from any path. No extraction work is performed.
	CaseSkip ResolutionCase = "skip"

	// CaseRename: a different source already produced the candidate output
	// name. The next free suffixed name is allocated instead.
	CaseRename ResolutionCase = "rename"

	// CaseClean: no collision; the base output name is used as-is.
	CaseClean ResolutionCase = "clean"
)

// Resolution is the deterministic outcome of conflict resolution for one
// source file against a given index state.
type Resolution struct {
	// Case is the conflict classification.
	Case ResolutionCase

	// OutputName is the allocated artifact name (empty for CaseSkip).
	OutputName string

	// BaseName is the sanitised candidate name before suffixing.
	BaseName string

	// PriorEntry is the indexed entry that triggered a skip or rename.
	PriorEntry *CorpusEntry
}

// OutcomeStatus is the terminal status of processing one file.
type OutcomeStatus string

const (
	// StatusProcessed: extracted and stored.
	StatusProcessed OutcomeStatus = "processed"

	// StatusSkipped: already extracted (same fingerprint); nothing done.
	StatusSkipped OutcomeStatus = "skipped"

	// StatusRenamed: extracted and stored under a suffixed name.
	StatusRenamed OutcomeStatus = "renamed"

	// StatusFailed: extraction or storage failed; batch continued.
	StatusFailed OutcomeStatus = "failed"

	// StatusUnsupported: unknown file kind; batch continued.
	StatusUnsupported OutcomeStatus = "unsupported"
)

// FileOutcome is the terminal result of ingesting a single file.
type FileOutcome struct {
	// SourcePath is the file that was processed.
	SourcePath string

	// Status is the terminal status.
	Status OutcomeStatus

	// OutputName is the artifact written (empty for skips and failures).
	OutputName string

	// Reason is a human-readable explanation for skips, renames and failures.
	Reason string

	// Err is the underlying error for failed outcomes.
	Err error
}

// Report accumulates per-file outcomes for one ingestion run.
// Per-file errors never abort the batch; they are collected here.
type Report struct {
	// Root is the file or directory the run was started on.
	Root string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Outcomes lists every file outcome in processing order.
	Outcomes []FileOutcome
}

// Add appends an outcome to the report.
func (r *Report) Add(o FileOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Processed counts files stored under their base name.
func (r *Report) Processed() int { return r.count(StatusProcessed) }

// Skipped counts files skipped as already extracted.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// Renamed counts files stored under a suffixed name.
func (r *Report) Renamed() int { return r.count(StatusRenamed) }

// Failed counts files that failed extraction or storage,
// including unsupported kinds.
func (r *Report) Failed() int {
	return r.count(StatusFailed) + r.count(StatusUnsupported)
}

func (r *Report) count(status OutcomeStatus) int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == status {
			n++
		}
	}
	return n
}
