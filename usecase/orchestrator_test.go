package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-checker/domain"
)

type orchestratorFixture struct {
	processes *fakeProcessStore
	params    *fakeParameterStore
	users     *fakeUserStore
	admission *AdmissionController
	extractor *fakeExtractor
	queue     *fakeQueue
	orch      *Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		processes: newFakeProcessStore(),
		params:    newFakeParameterStore(),
		users:     &fakeUserStore{users: map[string]uint{"admin": 1}},
		admission: NewAdmissionController(2),
		extractor: &fakeExtractor{text: "extracted cv text"},
		queue:     &fakeQueue{},
	}
	f.orch = NewOrchestrator(f.processes, f.params, f.users, f.admission, f.extractor, f.queue, testLogger())
	return f
}

func (f *orchestratorFixture) addPendingProcess(t *testing.T) *domain.Process {
	t.Helper()
	param := &domain.Parameter{
		FileName:       "cv.txt",
		FileType:       domain.FileTypeTXT,
		JobDescription: "backend engineer",
		StudyCase:      "build an evaluation service",
		Status:         domain.RecordActive,
	}
	require.NoError(t, f.params.Create(context.Background(), param))
	return f.processes.add(&domain.Process{
		StatusProcess: domain.ProcessPending,
		UserID:        1,
		ParameterID:   param.ID,
	})
}

func TestEvaluateQueuesProcess(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)

	resp, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	require.NoError(t, err)

	assert.Equal(t, proc.ID, resp.ID)
	assert.Equal(t, domain.ProcessQueued, resp.Status)
	assert.Equal(t, domain.ProcessQueued, f.processes.get(proc.ID).StatusProcess)

	require.Len(t, f.queue.published, 1)
	job := f.queue.published[0]
	assert.Equal(t, proc.ID, job.ProcessID)
	assert.Equal(t, "extracted cv text", job.CVText)
	assert.Equal(t, "backend engineer", job.JobDescription)
	assert.Equal(t, "build an evaluation service", job.StudyCase)

	// The slot stays held for the scoring task that now owns it.
	assert.Equal(t, 1, f.admission.InFlight())
}

func TestEvaluateUnknownProcess(t *testing.T) {
	f := newOrchestratorFixture()

	_, err := f.orch.Evaluate(context.Background(), 42, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.queue.published)
}

func TestEvaluateAlreadyProcessingIsBusyNotFailure(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)
	proc.StatusProcess = domain.ProcessProcessing

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// Busy is a signal: nothing about the process changed.
	assert.Equal(t, domain.ProcessProcessing, f.processes.get(proc.ID).StatusProcess)
	assert.Empty(t, f.processes.get(proc.ID).FailureReason)
	assert.Empty(t, f.queue.published)
}

func TestEvaluateMissingParameter(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.processes.add(&domain.Process{
		StatusProcess: domain.ProcessPending,
		UserID:        1,
		ParameterID:   99,
	})

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluateUnknownUser(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.queue.published)
}

func TestEvaluateRejectedAtAdmissionCeiling(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)

	// Two evaluations already hold the slots.
	require.True(t, f.admission.TryAcquire())
	require.True(t, f.admission.TryAcquire())

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	assert.ErrorIs(t, err, ErrSystemBusy)

	// No state mutation on rejection.
	assert.Equal(t, domain.ProcessPending, f.processes.get(proc.ID).StatusProcess)
	assert.Empty(t, f.extractor.calls, "extraction must not run after a busy rejection")
	assert.Empty(t, f.queue.published)
}

func TestEvaluateExtractionFailureLeavesProcessUntouched(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)
	f.extractor.err = &ExtractionError{Err: errors.New("corrupt file")}

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)

	// The process is not marked failed: the caller can resubmit with a
	// fixed file.
	got := f.processes.get(proc.ID)
	assert.Equal(t, domain.ProcessPending, got.StatusProcess)
	assert.Empty(t, got.FailureReason)
	assert.Equal(t, 0, f.admission.InFlight(), "slot must be released on extraction failure")
	assert.Empty(t, f.queue.published)
}

func TestEvaluatePublishFailureMarksProcessFailed(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)
	f.queue.err = errors.New("broker unavailable")

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	require.Error(t, err)

	got := f.processes.get(proc.ID)
	assert.Equal(t, domain.ProcessFailed, got.StatusProcess)
	assert.NotEmpty(t, got.FailureReason)
	assert.Equal(t, 0, f.admission.InFlight())
}

func TestEvaluateTerminalProcessIsStillAccepted(t *testing.T) {
	// Re-evaluating a finished process is permitted; there is no
	// terminal-state guard.
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)
	proc.StatusProcess = domain.ProcessFailed
	proc.FailureReason = "previous attempt failed"

	resp, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessQueued, resp.Status)

	got := f.processes.get(proc.ID)
	assert.Equal(t, domain.ProcessQueued, got.StatusProcess)
	assert.Empty(t, got.FailureReason, "queued process must not carry the previous attempt's failure reason")
	checkInvariants(t, got)
}

func TestEvaluateSucceededProcessDetachesOldResult(t *testing.T) {
	f := newOrchestratorFixture()
	proc := f.addPendingProcess(t)
	require.NoError(t, f.processes.MarkSuccess(context.Background(), proc.ID, &domain.Result{
		CVMatchRate: 0.8, ProjectScore: 7, Status: domain.RecordActive,
	}))

	_, err := f.orch.Evaluate(context.Background(), proc.ID, "admin")
	require.NoError(t, err)

	got := f.processes.get(proc.ID)
	assert.Equal(t, domain.ProcessQueued, got.StatusProcess)
	assert.Nil(t, got.ResultID, "queued process must not keep the previous attempt's result")
	checkInvariants(t, got)
}
