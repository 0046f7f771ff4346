package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// Analyzer dispatches coaching analysis to the configured LLM backend and
// guarantees a structurally valid result by falling back to the rule-based
// interpreter on any backend failure. The routine and calorie figures are
// never LLM-dependent; only the commentary and the graded assessment text
// are.
type Analyzer struct {
	logger      *logrus.Logger
	interpreter *HealthInterpreter
	builder     *RoutineBuilder
	engines     map[domain.AnalysisMode]domain.AnalysisEngine
	searcher    domain.SimilaritySearcher
	timeout     time.Duration
}

const defaultDurationMin = 30

// NewAnalyzer creates an analysis dispatcher. Engines may be nil or
// partial; any mode without an engine runs rule-based only. The searcher
// is optional and only enriches prompt context.
func NewAnalyzer(
	logger *logrus.Logger,
	interpreter *HealthInterpreter,
	builder *RoutineBuilder,
	engines map[domain.AnalysisMode]domain.AnalysisEngine,
	searcher domain.SimilaritySearcher,
	timeout time.Duration,
) *Analyzer {
	return &Analyzer{
		logger:      logger,
		interpreter: interpreter,
		builder:     builder,
		engines:     engines,
		searcher:    searcher,
		timeout:     timeout,
	}
}

// RunAnalysis produces a coaching analysis for one snapshot using the
// requested mode. Callers always receive a valid result; LLM failures are
// absorbed into a rule-based fallback with the reason recorded.
func (a *Analyzer) RunAnalysis(ctx context.Context, mode domain.AnalysisMode, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if !mode.IsValid() {
		return nil, domain.NewValidationError("mode", "unknown analysis mode", string(mode))
	}

	started := time.Now()

	ruleAssessment := a.interpreter.Interpret(&req.Snapshot)
	quality := a.interpreter.CheckDataQuality(&req.Snapshot)

	durationMin := req.DurationMin
	if durationMin <= 0 {
		durationMin = defaultDurationMin
	}
	weight := EstimateWeight(&req.Snapshot)
	settings := SettingsForScore(ruleAssessment.Score)
	routine := a.builder.Build(ruleAssessment.Score, durationMin, weight, settings)

	a.attachPastContext(ctx, req)

	result := &domain.AnalysisResult{
		Assessment: *ruleAssessment,
		Routine:    *routine,
		Mode:       mode,
		Engine:     "rule_based",
		Quality:    quality,
	}

	engine, ok := a.engines[mode]
	if !ok {
		result.Commentary = RuleBasedCommentary(ruleAssessment, routine)
		result.ElapsedMs = time.Since(started).Milliseconds()
		return result, nil
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	assessment, commentary, err := engine.Analyze(callCtx, req)
	if err != nil {
		reason := failureReasonFor(err)
		a.logger.WithFields(logrus.Fields{
			"mode":   mode.String(),
			"engine": engine.Name(),
			"reason": string(reason),
		}).WithError(err).Warn("LLM analysis failed, falling back to rule-based path")

		result.FellBack = true
		result.FailureReason = reason
		result.Commentary = RuleBasedCommentary(ruleAssessment, routine)
		result.ElapsedMs = time.Since(started).Milliseconds()
		return result, nil
	}

	// BMI and oxygen are always authoritative from the rule engine; LLM
	// output never overrides them.
	assessment.BMI = ruleAssessment.BMI
	assessment.Oxygen = ruleAssessment.Oxygen

	result.Assessment = *assessment
	result.Commentary = commentary
	result.Engine = engine.Name()
	result.ElapsedMs = time.Since(started).Milliseconds()

	a.logger.WithFields(logrus.Fields{
		"mode":       mode.String(),
		"engine":     engine.Name(),
		"score":      assessment.Score,
		"grade":      assessment.Grade.String(),
		"elapsed_ms": result.ElapsedMs,
	}).Info("Completed coaching analysis")

	return result, nil
}

// attachPastContext adds past-pattern text from the similarity searcher.
// Lookup failures are logged and ignored; past context is illustrative
// only.
func (a *Analyzer) attachPastContext(ctx context.Context, req *domain.AnalysisRequest) {
	if a.searcher == nil || req.UserID == "" || len(req.PastContext) > 0 {
		return
	}

	days, err := a.searcher.FindSimilarDays(ctx, req.UserID, &req.Snapshot, 0)
	if err != nil {
		a.logger.WithError(err).Debug("Similarity lookup failed, continuing without past context")
		return
	}

	for _, day := range days {
		req.PastContext = append(req.PastContext, fmt.Sprintf(
			"%s: score %d (%s), %.1fh sleep, %d steps [%s match]",
			day.Summary.Date, day.Summary.Score, day.Summary.Grade,
			day.Summary.SleepHours, day.Summary.Steps, day.Strength,
		))
	}
}

// failureReasonFor maps a backend error onto the fallback attribution.
// Anything without an explicit reason counts as a network-class failure.
func failureReasonFor(err error) domain.FailureReason {
	var be *domain.BackendError
	if errors.As(err, &be) && be.Reason != domain.FailureNone {
		return be.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.FailureNetwork
	}
	return domain.FailureNetwork
}

// RuleBasedCommentary renders the deterministic assessment as coaching
// text. Used whenever no LLM commentary is available.
func RuleBasedCommentary(assessment *domain.HealthAssessment, routine *domain.Routine) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Today's health score is %d/100 (grade %s, %s). ",
		assessment.Score, assessment.Grade, assessment.GradeText)

	if assessment.Sleep.Message != "" {
		b.WriteString(assessment.Sleep.Message + ". ")
	}
	if assessment.Activity.Message != "" {
		b.WriteString(assessment.Activity.Message + ". ")
	}
	if assessment.HeartRate.Message != "" {
		b.WriteString(assessment.HeartRate.Message + ". ")
	}

	fmt.Fprintf(&b, "Recommended intensity: %s. ", assessment.Intensity.Level)

	if len(routine.Items) > 0 {
		names := make([]string, 0, len(routine.Items))
		seen := make(map[string]bool, len(routine.Items))
		for _, item := range routine.Items {
			if !seen[item.Name] {
				seen[item.Name] = true
				names = append(names, item.Name)
			}
		}
		fmt.Fprintf(&b, "Suggested routine (%d min, ~%d kcal): %s.",
			routine.TotalTimeMin, routine.TotalCalories, strings.Join(names, ", "))
	}

	return b.String()
}
