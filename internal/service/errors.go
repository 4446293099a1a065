package service

import (
	"errors"

	"voyager.app/generator/internal/store"
)

var (
	ErrEmptyRequest     = errors.New("prompt must not be empty")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionBusy      = store.ErrSessionBusy
	ErrNoEnhancedPrompt = errors.New("session has no enhanced prompt yet")
	ErrNoSpec           = errors.New("session has no specification yet")
	ErrNoJobs           = errors.New("session has no submitted jobs")
	ErrJobsSuperseded   = errors.New("tracked jobs were replaced by a new submission")
	ErrUnsupportedHost  = errors.New("repository host must be github or gitlab")
)

func sessionErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
