package model

import "time"

// GenerationRequest is the raw user text a session starts from. Never mutated.
type GenerationRequest struct {
	Text string `json:"text"`
}

// TrackedJobs holds at most one backend and one frontend job.
type TrackedJobs struct {
	Backend  *CodeGenJob `json:"backend,omitempty"`
	Frontend *CodeGenJob `json:"frontend,omitempty"`
}

// Get returns the job tracked for jobType, or nil.
func (t TrackedJobs) Get(jobType JobType) *CodeGenJob {
	switch jobType {
	case JobTypeBackend:
		return t.Backend
	case JobTypeFrontend:
		return t.Frontend
	}
	return nil
}

// All returns the tracked jobs, backend first.
func (t TrackedJobs) All() []*CodeGenJob {
	jobs := make([]*CodeGenJob, 0, 2)
	if t.Backend != nil {
		jobs = append(jobs, t.Backend)
	}
	if t.Frontend != nil {
		jobs = append(jobs, t.Frontend)
	}
	return jobs
}

func (t TrackedJobs) Empty() bool {
	return t.Backend == nil && t.Frontend == nil
}

// Session is the state of one user's walk through the pipeline.
// It lives only in memory and is discarded on reset.
type Session struct {
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Request        GenerationRequest `json:"request"`
	EnhancedPrompt string            `json:"enhanced_prompt"`
	Spec           string            `json:"spec"`
	SpecWarning    *string           `json:"spec_warning,omitempty"`
	SpecRef        *SpecRef          `json:"spec_ref,omitempty"`
	Jobs           TrackedJobs       `json:"jobs"`
	ID             int64             `json:"id"`
}

// Clone returns a deep copy safe to hand out of the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.SpecRef != nil {
		ref := *s.SpecRef
		c.SpecRef = &ref
	}
	if s.Jobs.Backend != nil {
		b := *s.Jobs.Backend
		c.Jobs.Backend = &b
	}
	if s.Jobs.Frontend != nil {
		f := *s.Jobs.Frontend
		c.Jobs.Frontend = &f
	}
	return &c
}
