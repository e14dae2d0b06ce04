// Package usecase contains the evaluation pipeline: admission control,
// the orchestrator that accepts evaluation requests, the scoring
// adapter that talks to the LLM, and the projection of internal state
// to the client-facing result shape. Everything here works against the
// ports below so the pipeline can be exercised without MySQL, RabbitMQ
// or a live model.
package usecase

import (
	"context"

	"cv-checker/domain"
)

// ProcessStore persists evaluation processes.
type ProcessStore interface {
	Create(ctx context.Context, p *domain.Process) error
	GetByID(ctx context.Context, id uint) (*domain.Process, error)
	// GetWithResult loads a process together with its linked result
	// in one call.
	GetWithResult(ctx context.Context, id uint) (*domain.Process, error)
	// CountProcessing counts active processes currently in the
	// processing state.
	CountProcessing(ctx context.Context) (int64, error)
	// SetStatusProcess moves the process into a non-terminal state and
	// clears the terminal fields (failure reason, result reference)
	// left behind by an earlier attempt.
	SetStatusProcess(ctx context.Context, id uint, status string) error
	// MarkFailed sets status_process=failed with the given reason and
	// detaches any result from a previous attempt.
	MarkFailed(ctx context.Context, id uint, reason string) error
	// MarkSuccess creates the result row, attaches it to the process,
	// sets status_process=success and clears any prior failure reason,
	// all in one transaction.
	MarkSuccess(ctx context.Context, id uint, result *domain.Result) error
}

// ParameterStore persists evaluation input bundles.
type ParameterStore interface {
	Create(ctx context.Context, p *domain.Parameter) error
	GetByID(ctx context.Context, id uint) (*domain.Parameter, error)
}

// RequestStore is the append-only AI usage ledger.
type RequestStore interface {
	Append(ctx context.Context, processID uint, tokenUsed int) error
}

// UserStore resolves submitted usernames to active accounts.
type UserStore interface {
	ResolveActiveUser(ctx context.Context, username string) (uint, error)
}

// Completion is the validated-later reply of one LLM call.
type Completion struct {
	Content      string
	FinishReason string
	TotalTokens  int
}

// FinishReasonStop is the finish reason of a naturally completed
// reply; anything else means the model was cut off.
const FinishReasonStop = "stop"

// LLMClient performs one chat completion against the inference
// endpoint. The reply is untrusted and validated by the caller.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// ScoringJob is the unit of work handed off to the detached scoring
// task once an evaluation is admitted.
type ScoringJob struct {
	ProcessID      uint   `json:"process_id"`
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
	StudyCase      string `json:"study_case"`
}

// ScoringQueue hands a scoring job to the worker without blocking the
// caller on its execution.
type ScoringQueue interface {
	Publish(ctx context.Context, job ScoringJob) error
}

// TextExtractor turns a stored upload into plain text. Purely
// functional: it never touches the process record.
type TextExtractor interface {
	Extract(fileName, declaredType string) (string, error)
}

// FileStore is the upload storage boundary. Save must return a
// collision-free stored name.
type FileStore interface {
	Save(data []byte, suggestedName string) (string, error)
	Exists(fileName string) bool
	Read(fileName string) ([]byte, error)
	Delete(fileName string) error
}
