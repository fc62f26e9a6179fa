package domain

import "errors"

var (
	// ErrConfiguration means a required LLM service credential is
	// missing. Fatal at startup, never retried.
	ErrConfiguration = errors.New("missing service configuration")

	// ErrServiceUnavailable means the LLM service could not be reached
	// when opening a session.
	ErrServiceUnavailable = errors.New("llm service unavailable")

	ErrAgentNotFound = errors.New("agent not found")
	ErrAgentExists   = errors.New("agent already exists")

	// ErrEmptyMessage rejects blank user input before it reaches the
	// LLM service.
	ErrEmptyMessage = errors.New("message text is empty")
)
