package evaluation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleSummary(stage string, accuracy float64) *RunSummary {
	return &RunSummary{
		Stage:      stage,
		TotalCases: 1,
		Overall:    accuracy,
		Services: map[string]map[string]float64{
			ServiceHealth: {
				"accuracy":          accuracy,
				"keyword_match":     0.8,
				"consistency_score": 100,
			},
		},
		GradeAccuracy: 100,
	}
}

func sampleResults() []CaseResult {
	return []CaseResult{{
		CaseID:     "c1",
		Service:    ServiceHealth,
		Responses:  []string{"Health score: 90/100"},
		Scores:     map[string]float64{"accuracy": 90},
		GradeMatch: true,
	}}
}

func TestWriteAndLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	metadata := ArtifactMetadata{Stage: "baseline", Rounds: 3, Workers: 4, TotalCases: 1}

	path, err := WriteArtifact(dir, metadata, sampleSummary("baseline", 90), sampleResults())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if filepath.Dir(path) != filepath.Join(dir, "baseline") {
		t.Errorf("Expected artifact under the stage subdirectory, got %s", path)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "results_") || !strings.HasSuffix(name, ".json") {
		t.Errorf("Unexpected artifact file name %s", name)
	}

	artifact, err := LoadLatestArtifact(dir, "baseline")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if artifact.Metadata.Stage != "baseline" || artifact.Metadata.Rounds != 3 {
		t.Errorf("Metadata did not round-trip: %+v", artifact.Metadata)
	}
	if artifact.Metadata.GeneratedAt == "" {
		t.Error("Expected a generated_at timestamp to be filled in")
	}
	if artifact.Summary.Overall != 90 {
		t.Errorf("Expected overall 90, got %v", artifact.Summary.Overall)
	}
	if len(artifact.Results) != 1 || artifact.Results[0].CaseID != "c1" {
		t.Errorf("Per-case results did not round-trip: %+v", artifact.Results)
	}
}

func TestLoadLatestPicksNewestFile(t *testing.T) {
	dir := t.TempDir()
	stageDir := filepath.Join(dir, "baseline")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		t.Fatal(err)
	}

	older := `{"metadata":{"stage":"baseline"},"summary":{"stage":"baseline","overall_accuracy":50},"results":[]}`
	newer := `{"metadata":{"stage":"baseline"},"summary":{"stage":"baseline","overall_accuracy":90},"results":[]}`
	if err := os.WriteFile(filepath.Join(stageDir, "results_20260101_000000.json"), []byte(older), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stageDir, "results_20260201_000000.json"), []byte(newer), 0o644); err != nil {
		t.Fatal(err)
	}

	artifact, err := LoadLatestArtifact(dir, "baseline")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if artifact.Summary.Overall != 90 {
		t.Errorf("Expected the newer artifact, got overall %v", artifact.Summary.Overall)
	}
}

func TestLoadLatestMissingStage(t *testing.T) {
	if _, err := LoadLatestArtifact(t.TempDir(), "nope"); err == nil {
		t.Fatal("Expected an error for a stage with no results")
	}
}

func TestRenderComparison(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteArtifact(dir, ArtifactMetadata{Stage: "baseline"}, sampleSummary("baseline", 72), sampleResults()); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteArtifact(dir, ArtifactMetadata{Stage: "fine_tuned"}, sampleSummary("fine_tuned", 88), sampleResults()); err != nil {
		t.Fatal(err)
	}

	table, err := RenderComparison(dir, []string{"baseline", "fine_tuned", "missing"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, want := range []string{"baseline", "fine_tuned", "accuracy", "72.0", "88.0", "grade_accuracy"} {
		if !strings.Contains(table, want) {
			t.Errorf("Expected comparison table to contain %q:\n%s", want, table)
		}
	}
	// The stage with no artifacts renders as dashes, not an error.
	if !strings.Contains(table, "-") {
		t.Error("Expected missing stage columns to render as dashes")
	}
}

func TestRenderComparisonNoArtifacts(t *testing.T) {
	if _, err := RenderComparison(t.TempDir(), []string{"baseline"}); err == nil {
		t.Fatal("Expected an error when no stage has artifacts")
	}
}
