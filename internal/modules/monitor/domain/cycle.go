package domain

import "time"

type CycleOutcome string

const (
	OutcomeRecorded    CycleOutcome = "recorded"
	OutcomeNoValue     CycleOutcome = "no_value"
	OutcomePersistFail CycleOutcome = "persist_failed"
)

// Artifacts are the chart files written by one render. Both are empty
// when nothing was rendered.
type Artifacts struct {
	Snapshot string
	Latest   string
}

func (a Artifacts) Rendered() bool {
	return a.Latest != ""
}

type CycleResult struct {
	At        time.Time
	Outcome   CycleOutcome
	Sample    *Sample
	Artifacts Artifacts
	Samples   int
}
