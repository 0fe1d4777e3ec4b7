package model

// HandleJob carries the state of one handle through the pipeline.
// Steps read and extend it; once Skipped is set no further step runs.
type HandleJob struct {
	// Handle is the account being processed.
	Handle string

	// Source is the run mode.
	Source Source

	// Profile is set by the profile step when the page was found.
	Profile *Profile

	// Candidates are raw, unvalidated matches in discovery order.
	Candidates []string

	// Verified are the candidates that survived validation.
	Verified []string

	// Rows are the rows this handle contributes to the run.
	Rows []ResultRow

	// Status is the current classification of the handle.
	Status Status

	// Reason is a short human readable explanation of Status.
	Reason string

	// Skipped stops the pipeline for this handle.
	Skipped bool

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	seen map[string]struct{}
}

// NewHandleJob creates a job for a handle in the given mode.
func NewHandleJob(handle string, source Source) *HandleJob {
	return &HandleJob{
		Handle: handle,
		Source: source,
		Status: StatusPending,
	}
}

// Skip marks the job as finished with zero rows.
func (j *HandleJob) Skip(status Status, reason string) {
	j.Skipped = true
	j.Status = status
	j.Reason = reason
}

// AddCandidates appends candidates, ignoring exact duplicates while
// keeping the order of first discovery.
func (j *HandleJob) AddCandidates(candidates ...string) {
	if j.seen == nil {
		j.seen = make(map[string]struct{}, len(candidates))
		for _, c := range j.Candidates {
			j.seen[c] = struct{}{}
		}
	}
	for _, c := range candidates {
		if _, ok := j.seen[c]; ok {
			continue
		}
		j.seen[c] = struct{}{}
		j.Candidates = append(j.Candidates, c)
	}
}

// Emit turns the verified emails into rows tagged with the job's source.
func (j *HandleJob) Emit() {
	j.Rows = make([]ResultRow, 0, len(j.Verified))
	for _, email := range j.Verified {
		j.Rows = append(j.Rows, ResultRow{
			Handle: j.Handle,
			Email:  email,
			Source: j.Source,
		})
	}
	if len(j.Rows) > 0 {
		j.Status = StatusEmailsFound
		j.Reason = ""
	} else if j.Status == StatusPending {
		j.Status = StatusNoEmail
	}
}

// Outcome summarizes the job for the run record.
func (j *HandleJob) Outcome() HandleOutcome {
	return HandleOutcome{
		Handle: j.Handle,
		Status: j.Status,
		Reason: j.Reason,
		Emails: len(j.Rows),
	}
}
