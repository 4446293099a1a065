package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voyager.app/generator/common/logger"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/poller"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/queue"
	"voyager.app/generator/internal/store"
)

// JobSubmitter is the remote code-generation API.
type JobSubmitter interface {
	Submit(ctx context.Context, spec string, opts codegen.SubmitOptions) (*codegen.SubmitResult, error)
	CheckStatus(ctx context.Context, jobID string) (*model.CodeGenJob, error)
}

// SubmitOutcome is the session after submission plus per-target failures.
type SubmitOutcome struct {
	Session *model.Session
	Prompts map[model.JobType]string
	Errors  map[model.JobType]error
}

// StatusOutcome is the session after one polling round.
type StatusOutcome struct {
	Session *model.Session
	Errors  map[model.JobType]error
	Done    bool
}

type CodeGenService interface {
	// Submit starts jobs for the session's spec. New jobs replace any
	// previously tracked ones.
	Submit(ctx context.Context, sessionID int64, opts codegen.SubmitOptions) (*SubmitOutcome, error)
	// Refresh runs a single status round for the tracked jobs.
	Refresh(ctx context.Context, sessionID int64) (*StatusOutcome, error)
	// Watch polls until every tracked job is terminal, the session is reset
	// or ctx is done. onRound sees every round.
	Watch(ctx context.Context, sessionID int64, onRound func(ctx context.Context, out StatusOutcome)) error
	// PreviewPrompt returns the exact text that would be submitted.
	PreviewPrompt(params prompt.CodeGenParams) (string, error)
}

type codeGenService struct {
	submitter JobSubmitter
	poller    *poller.Poller
	publisher queue.Publisher
	sessions  store.SessionStore
	now       func() time.Time
}

func NewCodeGenService(submitter JobSubmitter, p *poller.Poller, publisher queue.Publisher, sessions store.SessionStore) CodeGenService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &codeGenService{
		submitter: submitter,
		poller:    p,
		publisher: publisher,
		sessions:  sessions,
		now:       time.Now,
	}
}

func (s *codeGenService) Submit(ctx context.Context, sessionID int64, opts codegen.SubmitOptions) (*SubmitOutcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "voyager.codegen.submit"})

	release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	defer release()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	if strings.TrimSpace(sess.Spec) == "" {
		return nil, ErrNoSpec
	}

	result, err := s.submitter.Submit(ctx, sess.Spec, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to submit code generation: %w", err)
	}

	updated, err := s.sessions.Update(ctx, sessionID, func(sess *model.Session) error {
		sess.Jobs = result.Jobs
		return nil
	})
	if err != nil {
		return nil, sessionErr(err)
	}
	// Watchers of the previous jobs stop; their late rounds are fenced off in record.
	if err := s.sessions.CancelWatchers(ctx, sessionID); err != nil {
		return nil, sessionErr(err)
	}

	for _, job := range updated.Jobs.All() {
		s.publish(ctx, queue.JobEvent(queue.EventJobSubmitted, sessionID, job, s.now()))
	}
	for jobType, terr := range result.Errors {
		slog.WarnContext(ctx, "target not submitted", "job_type", jobType, "error", terr)
	}

	return &SubmitOutcome{Session: updated, Prompts: result.Prompts, Errors: result.Errors}, nil
}

func (s *codeGenService) Refresh(ctx context.Context, sessionID int64) (*StatusOutcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID})

	release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	defer release()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	if sess.Jobs.Empty() {
		return nil, ErrNoJobs
	}

	round := s.poller.Once(ctx, sess.Jobs)
	out, _, err := s.record(ctx, sessionID, round)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *codeGenService) Watch(ctx context.Context, sessionID int64, onRound func(ctx context.Context, out StatusOutcome)) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID})

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return sessionErr(err)
	}
	if sess.Jobs.Empty() {
		return ErrNoJobs
	}

	bound, cancel, err := s.sessions.Bind(ctx, sessionID)
	if err != nil {
		return sessionErr(err)
	}
	defer cancel()

	var recordErr error
	_, err = s.poller.Run(bound, sess.Jobs, func(rctx context.Context, round poller.Round) {
		if recordErr != nil {
			return
		}
		out, stale, err := s.record(rctx, sessionID, round)
		switch {
		case err != nil:
			// Session is gone; the bound context is cancelled too.
			recordErr = err
			return
		case stale:
			recordErr = ErrJobsSuperseded
			cancel()
			return
		}
		if onRound != nil {
			onRound(rctx, *out)
		}
	})
	if recordErr != nil {
		return recordErr
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// Cancelled by the store: either a reset or a new submission.
		if _, gerr := s.sessions.Get(ctx, sessionID); gerr != nil {
			return ErrSessionNotFound
		}
		return ErrJobsSuperseded
	}
	return err
}

func (s *codeGenService) PreviewPrompt(params prompt.CodeGenParams) (string, error) {
	return prompt.BuildCodeGenPrompt(params)
}

var errStaleRound = errors.New("round observed superseded jobs")

// record stores a round's job state and publishes it. Observed jobs only
// replace the tracked job of the same type and id; stale is true when the
// round was polling jobs a newer submission has replaced, and then nothing
// is published.
func (s *codeGenService) record(ctx context.Context, sessionID int64, round poller.Round) (*StatusOutcome, bool, error) {
	updated, err := s.sessions.Update(ctx, sessionID, func(sess *model.Session) error {
		for _, observed := range round.Jobs.All() {
			if current := sess.Jobs.Get(observed.Type); current == nil || current.ID != observed.ID {
				return errStaleRound
			}
		}
		for _, observed := range round.Jobs.All() {
			*sess.Jobs.Get(observed.Type) = *observed
		}
		return nil
	})
	if errors.Is(err, errStaleRound) {
		slog.InfoContext(ctx, "discarded a status round for superseded jobs")
		return nil, true, nil
	}
	if err != nil {
		return nil, false, sessionErr(err)
	}

	now := s.now()
	for _, job := range updated.Jobs.All() {
		s.publish(ctx, queue.JobEvent(queue.EventJobStatus, sessionID, job, now))
	}
	if round.Done {
		s.publish(ctx, queue.StatusEvent{Type: queue.EventJobsSettled, SessionID: sessionID, At: now})
	}

	return &StatusOutcome{Session: updated, Errors: round.Errors, Done: round.Done}, false, nil
}

func (s *codeGenService) publish(ctx context.Context, ev queue.StatusEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "status event not published", "type", ev.Type, "error", err)
	}
}
