package model

import (
	"errors"

	"github.com/teamaptiv/volunteer-hub/pkg/core/clock"
)

// Error kinds surfaced by the scheduling engine. Callers match them with errors.Is.
var (
	// ErrFormat covers malformed times, durations, tokens and amounts
	ErrFormat           = clock.ErrFormat
	ErrConflict         = errors.New("reservation conflict")
	ErrNoSelection      = errors.New("no slots selected")
	ErrNotFound         = errors.New("not found")
	ErrConcurrentUpdate = errors.New("concurrent update")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyExists    = errors.New("already exists")
)
