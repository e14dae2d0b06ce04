package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"cv-checker/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeProcessStore struct {
	mu        sync.Mutex
	processes map[uint]*domain.Process
	results   map[uint]*domain.Result
	nextID    uint

	setStatusErr error
	markErr      error
}

func newFakeProcessStore() *fakeProcessStore {
	return &fakeProcessStore{
		processes: map[uint]*domain.Process{},
		results:   map[uint]*domain.Result{},
	}
}

func (f *fakeProcessStore) add(p *domain.Process) *domain.Process {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	if p.Status == "" {
		p.Status = domain.RecordActive
	}
	f.processes[p.ID] = p
	return p
}

func (f *fakeProcessStore) get(id uint) *domain.Process {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processes[id]
}

func (f *fakeProcessStore) Create(_ context.Context, p *domain.Process) error {
	f.add(p)
	return nil
}

func (f *fakeProcessStore) GetByID(_ context.Context, id uint) (*domain.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[id]
	if !ok || p.Status != domain.RecordActive {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProcessStore) GetWithResult(ctx context.Context, id uint) (*domain.Process, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ResultID != nil {
		p.Result = f.results[*p.ResultID]
	}
	return p, nil
}

func (f *fakeProcessStore) CountProcessing(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, p := range f.processes {
		if p.Status == domain.RecordActive && p.StatusProcess == domain.ProcessProcessing {
			count++
		}
	}
	return count, nil
}

func (f *fakeProcessStore) SetStatusProcess(_ context.Context, id uint, status string) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[id]
	if !ok {
		return ErrNotFound
	}
	p.StatusProcess = status
	p.FailureReason = ""
	p.ResultID = nil
	p.Result = nil
	return nil
}

func (f *fakeProcessStore) MarkFailed(_ context.Context, id uint, reason string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[id]
	if !ok {
		return ErrNotFound
	}
	p.StatusProcess = domain.ProcessFailed
	p.FailureReason = reason
	p.ResultID = nil
	p.Result = nil
	return nil
}

func (f *fakeProcessStore) MarkSuccess(_ context.Context, id uint, result *domain.Result) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[id]
	if !ok {
		return ErrNotFound
	}
	f.nextID++
	result.ID = f.nextID
	f.results[result.ID] = result
	resultID := result.ID
	p.ResultID = &resultID
	p.StatusProcess = domain.ProcessSuccess
	p.FailureReason = ""
	return nil
}

type fakeParameterStore struct {
	mu         sync.Mutex
	parameters map[uint]*domain.Parameter
	nextID     uint
}

func newFakeParameterStore() *fakeParameterStore {
	return &fakeParameterStore{parameters: map[uint]*domain.Parameter{}}
}

func (f *fakeParameterStore) Create(_ context.Context, p *domain.Parameter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.parameters[p.ID] = p
	return nil
}

func (f *fakeParameterStore) GetByID(_ context.Context, id uint) (*domain.Parameter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parameters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeUserStore struct {
	users map[string]uint
}

func (f *fakeUserStore) ResolveActiveUser(_ context.Context, username string) (uint, error) {
	id, ok := f.users[username]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

type fakeRequestStore struct {
	mu   sync.Mutex
	rows map[uint][]int
	err  error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{rows: map[uint][]int{}}
}

func (f *fakeRequestStore) Append(_ context.Context, processID uint, tokenUsed int) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[processID] = append(f.rows[processID], tokenUsed)
	return nil
}

func (f *fakeRequestStore) rowsFor(processID uint) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[processID]
}

type fakeLLM struct {
	completion Completion
	err        error
}

func (f *fakeLLM) Complete(context.Context, string) (Completion, error) {
	if f.err != nil {
		return Completion{}, f.err
	}
	return f.completion, nil
}

type fakeQueue struct {
	mu        sync.Mutex
	published []ScoringJob
	err       error
}

func (f *fakeQueue) Publish(_ context.Context, job ScoringJob) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, job)
	return nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls []string
}

func (f *fakeExtractor) Extract(fileName, declaredType string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s", fileName, declaredType))
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeFiles struct {
	files map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: map[string][]byte{}}
}

func (f *fakeFiles) Save(data []byte, suggestedName string) (string, error) {
	f.files[suggestedName] = data
	return suggestedName, nil
}

func (f *fakeFiles) Exists(fileName string) bool {
	_, ok := f.files[fileName]
	return ok
}

func (f *fakeFiles) Read(fileName string) ([]byte, error) {
	data, ok := f.files[fileName]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *fakeFiles) Delete(fileName string) error {
	delete(f.files, fileName)
	return nil
}
