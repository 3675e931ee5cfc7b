package domain

// CloneOutcome tells what a clone attempt did to its scheduler.
type CloneOutcome string

const (
	CloneAdvanced CloneOutcome = "advanced" // Transaction created, scheduler moved one period forward
	CloneRetired  CloneOutcome = "retired"  // Transaction created, last recurrence consumed, scheduler deleted
	CloneFailed   CloneOutcome = "failed"   // Nothing created, scheduler marked failed
	CloneSkipped  CloneOutcome = "skipped"  // Scheduler no longer due or already failed when locked
)

// CloneResult is the outcome of one clone attempt. Err is set only for CloneFailed.
type CloneResult struct {
	SchedulerID string       `json:"schedulerID"`
	Outcome     CloneOutcome `json:"outcome"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Err         error        `json:"-"`
}

// ProcessReport summarises one pass of the awaiting-scheduler job.
type ProcessReport struct {
	Processed int `json:"processed"`
	Cloned    int `json:"cloned"`
	Retired   int `json:"retired"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Add counts one clone result.
func (r *ProcessReport) Add(res CloneResult) {
	r.Processed++
	switch res.Outcome {
	case CloneAdvanced:
		r.Cloned++
	case CloneRetired:
		r.Retired++
	case CloneFailed:
		r.Failed++
	case CloneSkipped:
		r.Skipped++
	}
}
