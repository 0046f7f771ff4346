package evaluation

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
	"github.com/health-coach-server/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// scriptedProducer returns a fixed response per case ID, or fails for IDs
// listed in failing.
type scriptedProducer struct {
	responses map[string]string
	failing   map[string]bool
	calls     int
}

func (p *scriptedProducer) Stage() string { return "scripted" }

func (p *scriptedProducer) Produce(ctx context.Context, c *EvaluationCase) (string, error) {
	p.calls++
	if p.failing[c.ID] {
		return "", errors.New("backend unavailable")
	}
	return p.responses[c.ID], nil
}

func healthCase(id string) EvaluationCase {
	return EvaluationCase{
		ID:      id,
		Service: ServiceHealth,
		Expected: ExpectedCriteria{
			ConditionLevel:         domain.ConditionOptimal,
			Keywords:               []string{"sleep"},
			ExerciseRecommendation: domain.IntensityHigh,
			MinLength:              10,
			MaxLength:              500,
		},
	}
}

func TestRunScoresEveryCase(t *testing.T) {
	cases := []EvaluationCase{healthCase("c1"), healthCase("c2")}
	producer := &scriptedProducer{responses: map[string]string{
		"c1": "Health score: 90/100, grade A. Recommended intensity: high. Solid sleep.",
		"c2": "Health score: 88/100, grade A. Recommended intensity: high. Solid sleep.",
	}}

	runner := NewRunner(producer, domain.EvaluationConfig{Rounds: 3, Workers: 2}, testLogger())
	results, summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if producer.calls != 6 {
		t.Errorf("Expected 6 backend calls (2 cases x 3 rounds), got %d", producer.calls)
	}
	for i, result := range results {
		if result.CaseID != cases[i].ID {
			t.Errorf("Expected results in case order, got %s at %d", result.CaseID, i)
		}
		if len(result.Responses) != 3 || len(result.LatenciesMs) != 3 {
			t.Errorf("Expected 3 captured responses and latencies, got %d/%d",
				len(result.Responses), len(result.LatenciesMs))
		}
		if result.Scores["accuracy"] != 100 {
			t.Errorf("Expected accuracy 100 for %s, got %v", result.CaseID, result.Scores["accuracy"])
		}
		if result.Scores["consistency_score"] != 100 {
			t.Errorf("Expected full consistency for identical rounds, got %v", result.Scores["consistency_score"])
		}
	}

	if summary.TotalCases != 2 || summary.ErroredCases != 0 {
		t.Errorf("Unexpected summary counts: %+v", summary)
	}
	if summary.Overall != 100 {
		t.Errorf("Expected overall accuracy 100, got %v", summary.Overall)
	}
	if summary.GradeAccuracy != 100 {
		t.Errorf("Expected grade accuracy 100, got %v", summary.GradeAccuracy)
	}
	if summary.Stage != "scripted" {
		t.Errorf("Expected stage from producer, got %s", summary.Stage)
	}
}

func TestRunCapturesBackendFailures(t *testing.T) {
	cases := []EvaluationCase{healthCase("ok"), healthCase("down")}
	producer := &scriptedProducer{
		responses: map[string]string{
			"ok": "Health score: 85/100, grade A. Recommended intensity: high. Good sleep.",
		},
		failing: map[string]bool{"down": true},
	}

	runner := NewRunner(producer, domain.EvaluationConfig{Rounds: 2, Workers: 1}, testLogger())
	results, summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		t.Fatalf("A failing backend must not fail the run: %v", err)
	}

	down := results[1]
	if !down.Errored {
		t.Fatal("Expected the failing case to be marked errored")
	}
	if !strings.Contains(down.Responses[0], "backend unavailable") {
		t.Errorf("Expected the error text to be captured, got %q", down.Responses[0])
	}
	for key, value := range down.Scores {
		if value != 0 {
			t.Errorf("Expected %s to be 0 for an errored case, got %v", key, value)
		}
	}
	if summary.ErroredCases != 1 {
		t.Errorf("Expected 1 errored case in summary, got %d", summary.ErroredCases)
	}
}

func TestRunEmptyDataset(t *testing.T) {
	runner := NewRunner(&scriptedProducer{}, domain.EvaluationConfig{}, testLogger())
	if _, _, err := runner.Run(context.Background(), nil); err == nil {
		t.Fatal("Expected an error for an empty case set")
	}
}

func TestRunScoreDriftLowersConsistency(t *testing.T) {
	// Vary the response each round: 80, 83, 90. The third drifts more
	// than five points from the first.
	responses := []string{
		"Health score: 80/100, good sleep.",
		"Health score: 83/100, good sleep.",
		"Health score: 90/100, good sleep.",
	}
	round := 0
	producer := &roundProducer{next: func() string {
		r := responses[round%len(responses)]
		round++
		return r
	}}

	runner := NewRunner(producer, domain.EvaluationConfig{Rounds: 3, Workers: 1}, testLogger())
	results, _, err := runner.Run(context.Background(), []EvaluationCase{healthCase("drift")})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := results[0].Scores["consistency_score"]; got != 50 {
		t.Errorf("Expected consistency 50 with one drifting round, got %v", got)
	}
}

type roundProducer struct {
	next func() string
}

func (p *roundProducer) Stage() string { return "rounds" }
func (p *roundProducer) Produce(ctx context.Context, c *EvaluationCase) (string, error) {
	return p.next(), nil
}

func TestKarvonenRate(t *testing.T) {
	karvonenCase := EvaluationCase{
		ID:      "k1",
		Service: ServiceExercise,
		Expected: ExpectedCriteria{
			ConditionLevel: domain.ConditionOptimal,
			Keywords:       []string{"interval"},
			Concepts:       map[string]bool{"karvonen": true},
		},
	}
	plainCase := EvaluationCase{
		ID:       "k2",
		Service:  ServiceExercise,
		Expected: ExpectedCriteria{ConditionLevel: domain.ConditionOptimal, Keywords: []string{"walk"}},
	}

	producer := &scriptedProducer{responses: map[string]string{
		"k1": "Score 90/100. Intervals inside your Karvonen zone.",
		"k2": "Score 90/100. An easy walk is enough today.",
	}}

	runner := NewRunner(producer, domain.EvaluationConfig{Rounds: 1, Workers: 2}, testLogger())
	_, summary, err := runner.Run(context.Background(), []EvaluationCase{karvonenCase, plainCase})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if summary.KarvonenRate != 100 {
		t.Errorf("Expected karvonen rate 100, got %v", summary.KarvonenRate)
	}
	exercise := summary.Services[ServiceExercise]
	if exercise == nil {
		t.Fatal("Expected per-service averages for the exercise service")
	}
	if exercise["accuracy"] <= 0 {
		t.Errorf("Expected positive exercise accuracy, got %v", exercise["accuracy"])
	}
}

func TestAnalyzerProducerEndToEnd(t *testing.T) {
	logger := testLogger()
	analyzer := service.NewAnalyzer(logger,
		service.NewHealthInterpreter(logger),
		service.NewRoutineBuilder(logger),
		nil, nil, 0)
	producer := NewAnalyzerProducer(analyzer, domain.ModeDirectAPI, "baseline")

	cases := BuiltinDataset()
	runner := NewRunner(producer, domain.EvaluationConfig{Rounds: 2, Workers: 3}, testLogger())
	results, summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.ErroredCases != 0 {
		t.Fatalf("Rule-based analysis must never error, got %d errored cases", summary.ErroredCases)
	}
	if summary.GradeAccuracy != 100 {
		t.Errorf("Expected the deterministic engine to hit every expected grade, got %v", summary.GradeAccuracy)
	}
	for _, result := range results {
		if result.Scores["structure_score"] != 100 {
			t.Errorf("Expected fully structured rendered responses for %s, got %v",
				result.CaseID, result.Scores["structure_score"])
		}
		// Deterministic backend repeats itself exactly.
		if result.Scores["consistency_score"] != 100 {
			t.Errorf("Expected full consistency for %s, got %v", result.CaseID, result.Scores["consistency_score"])
		}
	}
}
