package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"cv-checker/domain"
)

// MaxTotalTokens is the ceiling on token usage for one scoring
// attempt; anything above it is treated as excessive and failed.
const MaxTotalTokens = 120000

// resultFields are the keys the model must return, checked in this
// order so the first missing one names the failure.
var resultFields = []string{
	"cv_match_rate",
	"cv_feedback",
	"project_score",
	"project_feedback",
	"overall_summary",
}

// ScoringAdapter is the detached task behind the queue: it drives a
// process from processing to success or failed, writes exactly one
// usage ledger row per attempt, and never reports back to the request
// that triggered it.
type ScoringAdapter struct {
	processes ProcessStore
	requests  RequestStore
	llm       LLMClient
	admission *AdmissionController
	log       *logrus.Logger
}

func NewScoringAdapter(
	processes ProcessStore,
	requests RequestStore,
	llm LLMClient,
	admission *AdmissionController,
	log *logrus.Logger,
) *ScoringAdapter {
	return &ScoringAdapter{
		processes: processes,
		requests:  requests,
		llm:       llm,
		admission: admission,
		log:       log,
	}
}

// Run executes one scoring attempt. All failures are swallowed here
// and persisted as a failed state with a reason; no caller is waiting.
// There is no retry: one failed attempt permanently fails the
// evaluation.
func (s *ScoringAdapter) Run(ctx context.Context, job ScoringJob) {
	defer s.admission.Release()

	ledgered := false
	defer func() {
		if r := recover(); r != nil {
			if !ledgered {
				s.appendLedger(ctx, job.ProcessID, 0)
			}
			s.fail(ctx, job.ProcessID, fmt.Sprintf("unexpected error during evaluation: %v", r))
		}
	}()

	if err := s.processes.SetStatusProcess(ctx, job.ProcessID, domain.ProcessProcessing); err != nil {
		s.appendLedger(ctx, job.ProcessID, 0)
		ledgered = true
		s.fail(ctx, job.ProcessID, "failed to start processing: "+err.Error())
		return
	}

	comp, err := s.llm.Complete(ctx, BuildScoringPrompt(job))
	if err != nil {
		s.appendLedger(ctx, job.ProcessID, 0)
		ledgered = true
		s.fail(ctx, job.ProcessID, err.Error())
		return
	}

	// One ledger row per attempt, written before validation so the
	// usage is recorded even when the reply is rejected.
	s.appendLedger(ctx, job.ProcessID, comp.TotalTokens)
	ledgered = true

	result, reason := validateCompletion(comp)
	if reason != "" {
		s.fail(ctx, job.ProcessID, reason)
		return
	}

	if err := s.processes.MarkSuccess(ctx, job.ProcessID, result); err != nil {
		s.fail(ctx, job.ProcessID, "failed to persist result: "+err.Error())
		return
	}

	s.log.WithFields(logrus.Fields{
		"process_id":    job.ProcessID,
		"cv_match_rate": result.CVMatchRate,
		"project_score": result.ProjectScore,
		"token_used":    comp.TotalTokens,
	}).Info("evaluation succeeded")
}

// validateCompletion checks the untrusted reply in a fixed order and
// returns the first violation as a failure reason, or the parsed
// result when every check passes.
func validateCompletion(comp Completion) (*domain.Result, string) {
	if strings.TrimSpace(comp.Content) == "" {
		return nil, "No content returned by the AI model"
	}
	if comp.FinishReason != FinishReasonStop {
		return nil, fmt.Sprintf("AI response did not finish naturally (finish reason: %s)", comp.FinishReason)
	}
	if comp.TotalTokens > MaxTotalTokens {
		return nil, fmt.Sprintf("Token usage %d exceeds the %d limit", comp.TotalTokens, MaxTotalTokens)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(sanitizeModelJSON(comp.Content)), &parsed); err != nil {
		return nil, "AI response is not valid JSON: " + err.Error()
	}

	for _, field := range resultFields {
		if v, ok := parsed[field]; !ok || v == nil {
			return nil, fmt.Sprintf("Missing %s in AI response", field)
		}
	}

	matchRate, ok := asNumber(parsed["cv_match_rate"])
	if !ok || matchRate < 0 || matchRate > 1 {
		return nil, "Invalid cv_match_rate, must be a number between 0 and 1"
	}
	projectScore, ok := asNumber(parsed["project_score"])
	if !ok || projectScore < 1 || projectScore > 10 {
		return nil, "Invalid project_score, must be a number between 1 and 10"
	}

	return &domain.Result{
		CVMatchRate:     matchRate,
		CVFeedback:      asText(parsed["cv_feedback"]),
		ProjectScore:    projectScore,
		ProjectFeedback: asText(parsed["project_feedback"]),
		OverallSummary:  asText(parsed["overall_summary"]),
	}, ""
}

func (s *ScoringAdapter) appendLedger(ctx context.Context, processID uint, tokenUsed int) {
	if err := s.requests.Append(ctx, processID, tokenUsed); err != nil {
		s.log.WithError(err).WithField("process_id", processID).Error("could not append usage ledger row")
	}
}

func (s *ScoringAdapter) fail(ctx context.Context, processID uint, reason string) {
	if err := s.processes.MarkFailed(ctx, processID, reason); err != nil {
		s.log.WithError(err).WithField("process_id", processID).Error("could not mark process failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"process_id": processID,
		"reason":     reason,
	}).Warn("evaluation failed")
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// sanitizeModelJSON strips markdown fences and any prose around the
// outermost JSON object. Models wrap replies in code blocks no matter
// how firmly the prompt forbids it.
func sanitizeModelJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}

// BuildScoringPrompt embeds the rubric, the extracted candidate text,
// the job description and the study case into a single instruction
// asking for a strict JSON reply.
func BuildScoringPrompt(job ScoringJob) string {
	return fmt.Sprintf(`You are an evaluator for a hiring pipeline. Use the job description and study case below to evaluate the candidate.

Job Description:
%s

Study Case:
%s

Candidate CV:
%s

Score these parameters, each on a 1-5 scale, then aggregate:
- CV match rate against the job description
- Technical skills match (backend, databases, APIs, cloud, AI/LLM exposure)
- Experience level (years, project complexity)
- Relevant achievements (impact, scale)
- Cultural fit (communication, learning attitude)
Evaluate the study case deliverable for correctness, code quality, resilience and documentation.

Return strict JSON with exactly this structure:
{
  "cv_match_rate": float,
  "cv_feedback": string,
  "project_score": float,
  "project_feedback": string,
  "overall_summary": string
}

IMPORTANT: cv_match_rate is between 0 and 1, project_score is between 1 and 10. Return ONLY the raw JSON without any markdown formatting, code blocks, or additional text.`,
		job.JobDescription, job.StudyCase, job.CVText)
}
