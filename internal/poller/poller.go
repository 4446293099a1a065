package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voyager.app/generator/common/logger"
	"voyager.app/generator/internal/model"
)

const DefaultInterval = 5 * time.Second

// StatusChecker fetches one remote run. (nil, nil) means not found.
type StatusChecker interface {
	CheckStatus(ctx context.Context, jobID string) (*model.CodeGenJob, error)
}

// Round is reported to the caller after every polling round.
type Round struct {
	Jobs   model.TrackedJobs
	Errors map[model.JobType]error
	Number int
	Done   bool
}

// RoundFunc observes a completed round. It runs on the polling goroutine.
type RoundFunc func(ctx context.Context, round Round)

type Poller struct {
	checker  StatusChecker
	interval time.Duration
}

func New(checker StatusChecker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{checker: checker, interval: interval}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls once immediately and then once per interval until every tracked
// job is terminal or ctx is done. It returns the last known job state, and
// ctx.Err() when cancelled first. A failed check is reported in the round and
// polling continues.
func (p *Poller) Run(ctx context.Context, tracked model.TrackedJobs, onRound RoundFunc) (model.TrackedJobs, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "voyager.codegen.poller"})

	if tracked.Empty() {
		return tracked, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	current := tracked
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return current, err
		}

		observations := p.round(ctx, current, n)
		next, done := Advance(current, observations)
		current = next

		if onRound != nil {
			onRound(ctx, Round{Number: n, Jobs: copyJobs(current), Errors: roundErrors(observations), Done: done})
		}
		if done {
			slog.InfoContext(ctx, "all tracked jobs reached a terminal state", "rounds", n)
			return current, nil
		}

		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "polling cancelled", "rounds", n)
			return current, ctx.Err()
		case <-ticker.C:
		}
	}
}

// round checks every tracked job concurrently and waits for all of them.
func (p *Poller) round(ctx context.Context, tracked model.TrackedJobs, n int) []Observation {
	sp := logger.StartSpan(ctx, "codegen.poll_round", logger.AttrPollRound.Int(n))
	defer sp.End()
	ctx = sp.Context()

	jobs := tracked.All()
	observations := make([]Observation, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job *model.CodeGenJob) {
			defer wg.Done()
			jctx := logger.WithLogFields(ctx, logger.LogFields{
				JobID:   logger.Ptr(job.ID),
				JobType: logger.Ptr(string(job.Type)),
			})
			observed, err := p.checker.CheckStatus(jctx, job.ID)
			if err != nil {
				slog.WarnContext(jctx, "status check failed", "error", err)
			}
			observations[i] = Observation{Type: job.Type, Job: observed, Err: err}
		}(i, job)
	}
	wg.Wait()

	return observations
}

func roundErrors(observations []Observation) map[model.JobType]error {
	var errs map[model.JobType]error
	for _, obs := range observations {
		if obs.Err == nil {
			continue
		}
		if errs == nil {
			errs = make(map[model.JobType]error)
		}
		errs[obs.Type] = obs.Err
	}
	return errs
}

// Once runs a single round over tracked without scheduling another.
func (p *Poller) Once(ctx context.Context, tracked model.TrackedJobs) Round {
	observations := p.round(ctx, tracked, 1)
	next, done := Advance(tracked, observations)
	return Round{Number: 1, Jobs: next, Errors: roundErrors(observations), Done: done}
}
