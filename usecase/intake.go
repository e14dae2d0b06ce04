package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"cv-checker/domain"
)

// declaredTypes are the file types a submission may declare. The
// parameter column only stores these three; legacy .doc files are
// handled at extraction time but cannot be declared here.
var declaredTypes = map[string]bool{
	domain.FileTypePDF:  true,
	domain.FileTypeTXT:  true,
	domain.FileTypeDOCX: true,
}

// Intake accepts evaluation submissions: it validates the input
// bundle, records it as an immutable Parameter and opens a pending
// Process for it.
type Intake struct {
	parameters ParameterStore
	processes  ProcessStore
	users      UserStore
	files      FileStore
	log        *logrus.Logger
}

func NewIntake(parameters ParameterStore, processes ProcessStore, users UserStore, files FileStore, log *logrus.Logger) *Intake {
	return &Intake{
		parameters: parameters,
		processes:  processes,
		users:      users,
		files:      files,
		log:        log,
	}
}

// SubmissionInput is one evaluation submission.
type SubmissionInput struct {
	FileName       string
	FileType       string
	JobDescription string
	StudyCase      string
	Username       string
}

// Submit validates the submission and creates Parameter + Process in
// pending state, returning the new process id.
func (i *Intake) Submit(ctx context.Context, in SubmissionInput) (uint, error) {
	if in.FileName == "" || in.FileType == "" || in.JobDescription == "" || in.StudyCase == "" || in.Username == "" {
		return 0, NewValidationError("please fill the required input")
	}

	if !i.files.Exists(in.FileName) {
		return 0, fmt.Errorf("file %q: %w", in.FileName, ErrNotFound)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.FileName), "."))
	if !declaredTypes[ext] {
		return 0, NewValidationError("file type only supports plain text, pdf, and docx")
	}
	if ext != in.FileType {
		return 0, NewValidationError("file type does not match the file name")
	}

	userID, err := i.users.ResolveActiveUser(ctx, in.Username)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", in.Username, err)
	}

	param := &domain.Parameter{
		FileName:       in.FileName,
		FileType:       in.FileType,
		JobDescription: in.JobDescription,
		StudyCase:      in.StudyCase,
		Status:         domain.RecordActive,
	}
	if err := i.parameters.Create(ctx, param); err != nil {
		return 0, fmt.Errorf("create parameter: %w", err)
	}

	proc := &domain.Process{
		StatusProcess: domain.ProcessPending,
		UserID:        userID,
		ParameterID:   param.ID,
		Status:        domain.RecordActive,
	}
	if err := i.processes.Create(ctx, proc); err != nil {
		return 0, fmt.Errorf("create process: %w", err)
	}

	i.log.WithFields(logrus.Fields{
		"process_id": proc.ID,
		"file_name":  in.FileName,
	}).Info("submission accepted")

	return proc.ID, nil
}
