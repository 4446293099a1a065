// Package poller drives tracked code-generation jobs to a terminal state.
package poller

import "voyager.app/generator/internal/model"

// Observation is the outcome of one status check.
// A nil Job with a nil Err means the remote service does not know the run yet.
type Observation struct {
	Job  *model.CodeGenJob
	Err  error
	Type model.JobType
}

// Advance merges one round of observations into tracked and reports whether
// polling is finished. tracked is not modified. A job that is already terminal
// never changes again.
func Advance(tracked model.TrackedJobs, observations []Observation) (model.TrackedJobs, bool) {
	next := copyJobs(tracked)
	for _, obs := range observations {
		if obs.Err != nil || obs.Job == nil {
			continue
		}
		job := next.Get(obs.Type)
		if job == nil || job.Status.IsTerminal() {
			continue
		}
		job.Merge(obs.Job)
	}
	return next, Done(next)
}

// Done is true when every tracked job is terminal, or nothing is tracked.
func Done(tracked model.TrackedJobs) bool {
	for _, job := range tracked.All() {
		if !job.Status.IsTerminal() {
			return false
		}
	}
	return true
}

func copyJobs(t model.TrackedJobs) model.TrackedJobs {
	var out model.TrackedJobs
	if t.Backend != nil {
		b := *t.Backend
		out.Backend = &b
	}
	if t.Frontend != nil {
		f := *t.Frontend
		out.Frontend = &f
	}
	return out
}
