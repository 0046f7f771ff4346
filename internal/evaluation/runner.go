package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
	"github.com/health-coach-server/internal/service"
)

// ResponseProducer turns an evaluation case into one captured response
// text. Implementations wrap whichever backend stage is under test.
type ResponseProducer interface {
	Produce(ctx context.Context, c *EvaluationCase) (string, error)
	Stage() string
}

// CaseResult holds everything captured and derived for a single case.
type CaseResult struct {
	CaseID        string             `json:"case_id"`
	Service       string             `json:"service"`
	Responses     []string           `json:"responses"`
	LatenciesMs   []int64            `json:"latencies_ms"`
	Scores        map[string]float64 `json:"scores"`
	GradeMatch    bool               `json:"grade_match"`
	GradeAdjacent bool               `json:"grade_adjacent"`
	Errored       bool               `json:"errored"`
}

// RunSummary aggregates per-service averages plus headline rates.
type RunSummary struct {
	Stage         string                        `json:"stage"`
	TotalCases    int                           `json:"total_cases"`
	ErroredCases  int                           `json:"errored_cases"`
	Overall       float64                       `json:"overall_accuracy"`
	Services      map[string]map[string]float64 `json:"services"`
	GradeAccuracy float64                       `json:"grade_accuracy"`
	KarvonenRate  float64                       `json:"karvonen_rate"`
}

// Runner drives a full evaluation: every case scored over a fixed number
// of repeat rounds, with cases fanned out across a bounded worker pool.
type Runner struct {
	producer ResponseProducer
	config   domain.EvaluationConfig
	logger   *logrus.Logger
}

const (
	defaultRounds  = 3
	defaultWorkers = 4
)

// NewRunner creates an evaluation runner for one backend stage.
func NewRunner(producer ResponseProducer, config domain.EvaluationConfig, logger *logrus.Logger) *Runner {
	if config.Rounds <= 0 {
		config.Rounds = defaultRounds
	}
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	return &Runner{producer: producer, config: config, logger: logger}
}

// Run evaluates all cases and returns per-case results in case order plus
// the aggregate summary. Individual backend failures are captured as
// error responses and scored, never propagated as errors.
func (r *Runner) Run(ctx context.Context, cases []EvaluationCase) ([]CaseResult, *RunSummary, error) {
	if len(cases) == 0 {
		return nil, nil, fmt.Errorf("no evaluation cases to run")
	}

	r.logger.WithFields(logrus.Fields{
		"stage":   r.producer.Stage(),
		"cases":   len(cases),
		"rounds":  r.config.Rounds,
		"workers": r.config.Workers,
	}).Info("Starting evaluation run")

	results := make([]CaseResult, len(cases))
	sem := make(chan struct{}, r.config.Workers)
	var wg sync.WaitGroup

	for i := range cases {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = r.runCase(ctx, &cases[idx])
		}(i)
	}
	wg.Wait()

	summary := r.summarize(cases, results)
	return results, summary, nil
}

// runCase executes the configured rounds sequentially so per-round
// latencies stay honest, then scores the captured responses.
func (r *Runner) runCase(ctx context.Context, c *EvaluationCase) CaseResult {
	responses := make([]string, 0, r.config.Rounds)
	latencies := make([]int64, 0, r.config.Rounds)

	for round := 0; round < r.config.Rounds; round++ {
		start := time.Now()
		response, err := r.producer.Produce(ctx, c)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			response = encodeError(err)
			r.logger.WithError(err).WithFields(logrus.Fields{
				"case_id": c.ID,
				"round":   round + 1,
			}).Warn("Backend call failed, captured as error response")
		}
		responses = append(responses, response)
		latencies = append(latencies, elapsed)
	}

	result := scoreCase(c, responses)
	result.LatenciesMs = latencies
	return result
}

// scoreCase derives every metric for one case from its captured
// responses. The first response is the primary one; repeats feed only the
// consistency metrics. An errored primary response zeroes all scores.
func scoreCase(c *EvaluationCase, responses []string) CaseResult {
	result := CaseResult{
		CaseID:    c.ID,
		Service:   c.Service,
		Responses: responses,
		Scores:    make(map[string]float64),
	}

	primary := ""
	if len(responses) > 0 {
		primary = responses[0]
	}

	if primary == "" || IsErrorResponse(primary) {
		result.Errored = true
		for _, key := range scoreKeys {
			result.Scores[key] = 0
		}
		return result
	}

	expected := &c.Expected

	result.GradeMatch, result.GradeAdjacent = GradeMatch(primary, expected.ConditionLevel)
	result.Scores["keyword_match"] = KeywordMatchScore(primary, expected.Keywords)
	result.Scores["length_score"] = LengthScore(primary, expected.MinLength, expected.MaxLength) * 100
	result.Scores["structure_score"] = StructureScore(primary)
	result.Scores["citation_strict_score"] = CitationStrictScore(primary, expected) * 100
	result.Scores["concept_score"] = ConceptScore(primary, expected) * 100
	result.Scores["consistency_score"] = consistency(responses) * 100

	switch c.Service {
	case ServiceExercise:
		result.Scores["accuracy"] = ExerciseAccuracy(primary, expected)
	default:
		result.Scores["accuracy"] = HealthAccuracy(primary, expected)
	}

	return result
}

var scoreKeys = []string{
	"accuracy", "keyword_match", "length_score", "structure_score",
	"citation_strict_score", "concept_score", "consistency_score",
}

// consistency prefers the structured score-delta variant when every
// response carries a parseable numeric score, otherwise falls back to
// token-set overlap.
func consistency(responses []string) float64 {
	scores := make([]int, 0, len(responses))
	for _, response := range responses {
		n, ok := ExtractScore(response)
		if !ok {
			return TextConsistencyScore(responses)
		}
		scores = append(scores, n)
	}
	return ScoreConsistency(scores)
}

func (r *Runner) summarize(cases []EvaluationCase, results []CaseResult) *RunSummary {
	summary := &RunSummary{
		Stage:      r.producer.Stage(),
		TotalCases: len(results),
		Services:   make(map[string]map[string]float64),
	}

	type acc struct {
		sums  map[string]float64
		count int
	}
	perService := make(map[string]*acc)

	healthCases, gradeHits := 0, 0
	karvonenRequired, karvonenHits := 0, 0
	overallSum := 0.0

	for i, result := range results {
		if result.Errored {
			summary.ErroredCases++
		}

		a := perService[result.Service]
		if a == nil {
			a = &acc{sums: make(map[string]float64)}
			perService[result.Service] = a
		}
		a.count++
		for key, value := range result.Scores {
			a.sums[key] += value
		}
		overallSum += result.Scores["accuracy"]

		if result.Service == ServiceHealth {
			healthCases++
			if result.GradeMatch {
				gradeHits++
			}
		}
		if cases[i].Expected.Concepts["karvonen"] {
			karvonenRequired++
			if !result.Errored && result.Scores["concept_score"] > 0 {
				karvonenHits++
			}
		}
	}

	for name, a := range perService {
		avgs := make(map[string]float64, len(a.sums))
		for key, sum := range a.sums {
			avgs[key] = sum / float64(a.count)
		}
		summary.Services[name] = avgs
	}
	summary.Overall = overallSum / float64(len(results))
	if healthCases > 0 {
		summary.GradeAccuracy = float64(gradeHits) / float64(healthCases) * 100
	}
	if karvonenRequired > 0 {
		summary.KarvonenRate = float64(karvonenHits) / float64(karvonenRequired) * 100
	}

	return summary
}

func encodeError(err error) string {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(raw)
}

// AnalyzerProducer evaluates the serving pipeline itself by rendering
// each analysis result as the response text a coaching client would see.
type AnalyzerProducer struct {
	analyzer *service.Analyzer
	mode     domain.AnalysisMode
	stage    string
}

// NewAnalyzerProducer wraps the dispatcher for one analysis mode.
func NewAnalyzerProducer(analyzer *service.Analyzer, mode domain.AnalysisMode, stage string) *AnalyzerProducer {
	if stage == "" {
		stage = string(mode)
	}
	return &AnalyzerProducer{analyzer: analyzer, mode: mode, stage: stage}
}

func (p *AnalyzerProducer) Stage() string { return p.stage }

func (p *AnalyzerProducer) Produce(ctx context.Context, c *EvaluationCase) (string, error) {
	req := &domain.AnalysisRequest{
		UserID:      "eval-" + c.ID,
		Snapshot:    c.Input,
		DurationMin: c.DurationMin,
	}
	result, err := p.analyzer.RunAnalysis(ctx, p.mode, req)
	if err != nil {
		return "", err
	}
	return RenderResponse(result), nil
}

// RenderResponse flattens an analysis result into the plain-text form the
// scoring metrics inspect.
func RenderResponse(result *domain.AnalysisResult) string {
	assessment := &result.Assessment

	text := fmt.Sprintf("Health score: %d/100 (grade %s, %s). Recommended intensity: %s.\n",
		assessment.Score, assessment.Grade, assessment.GradeText, assessment.Intensity.Level)
	text += result.Commentary

	if len(result.Routine.Items) > 0 {
		names := make([]string, 0, len(result.Routine.Items))
		for _, item := range result.Routine.Items {
			names = append(names, item.Name)
		}
		sort.Strings(names)
		text += fmt.Sprintf("\nRoutine (%d min, %d kcal): ",
			result.Routine.TotalTimeMin, result.Routine.TotalCalories)
		for i, name := range names {
			if i > 0 {
				text += ", "
			}
			text += name
		}
	}

	return text
}
