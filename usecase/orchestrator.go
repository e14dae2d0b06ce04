package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cv-checker/domain"
)

// Orchestrator accepts evaluation requests and hands admitted ones to
// the scoring queue. The triggering request returns as soon as the job
// is queued; all later state transitions belong to the scoring task.
type Orchestrator struct {
	processes  ProcessStore
	parameters ParameterStore
	users      UserStore
	admission  *AdmissionController
	extractor  TextExtractor
	queue      ScoringQueue
	log        *logrus.Logger
}

func NewOrchestrator(
	processes ProcessStore,
	parameters ParameterStore,
	users UserStore,
	admission *AdmissionController,
	extractor TextExtractor,
	queue ScoringQueue,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		processes:  processes,
		parameters: parameters,
		users:      users,
		admission:  admission,
		extractor:  extractor,
		queue:      queue,
		log:        log,
	}
}

// EvaluateResponse is returned to the caller when an evaluation is
// accepted.
type EvaluateResponse struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// Evaluate runs the admission pipeline for one process: load, busy
// check, extract, queue. A process already processing gets
// ErrAlreadyRunning; a full system gets ErrSystemBusy; both leave all
// records untouched. Extraction failures are returned to the caller
// without marking the process failed, so the same process can be
// resubmitted with a fixed file.
func (o *Orchestrator) Evaluate(ctx context.Context, processID uint, username string) (EvaluateResponse, error) {
	proc, err := o.processes.GetByID(ctx, processID)
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("process %d: %w", processID, err)
	}

	if proc.StatusProcess == domain.ProcessProcessing {
		return EvaluateResponse{}, ErrAlreadyRunning
	}

	param, err := o.parameters.GetByID(ctx, proc.ParameterID)
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("parameter %d: %w", proc.ParameterID, err)
	}

	if _, err := o.users.ResolveActiveUser(ctx, username); err != nil {
		return EvaluateResponse{}, fmt.Errorf("user %q: %w", username, err)
	}

	if !o.admission.TryAcquire() {
		o.log.WithField("process_id", processID).Warn("admission ceiling reached, evaluation rejected")
		return EvaluateResponse{}, ErrSystemBusy
	}
	handedOff := false
	defer func() {
		if !handedOff {
			o.admission.Release()
		}
	}()

	cvText, err := o.extractor.Extract(param.FileName, param.FileType)
	if err != nil {
		// The process stays as-is: extraction problems are reported to
		// the caller, not recorded as a terminal failure.
		return EvaluateResponse{}, err
	}

	if err := o.processes.SetStatusProcess(ctx, processID, domain.ProcessQueued); err != nil {
		return EvaluateResponse{}, fmt.Errorf("queue process %d: %w", processID, err)
	}

	job := ScoringJob{
		ProcessID:      processID,
		CVText:         cvText,
		JobDescription: param.JobDescription,
		StudyCase:      param.StudyCase,
	}
	if err := o.queue.Publish(ctx, job); err != nil {
		if markErr := o.processes.MarkFailed(ctx, processID, "failed to queue evaluation: "+err.Error()); markErr != nil {
			o.log.WithError(markErr).WithField("process_id", processID).Error("could not mark process failed after publish error")
		}
		return EvaluateResponse{}, fmt.Errorf("publish scoring job for process %d: %w", processID, err)
	}
	handedOff = true

	o.log.WithFields(logrus.Fields{
		"process_id": processID,
		"file_name":  param.FileName,
	}).Info("evaluation queued")

	return EvaluateResponse{ID: processID, Status: domain.ProcessQueued}, nil
}
