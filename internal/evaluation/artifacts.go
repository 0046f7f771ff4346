package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// ArtifactMetadata describes how a run was produced.
type ArtifactMetadata struct {
	Stage       string `json:"stage"`
	GeneratedAt string `json:"generated_at"`
	Rounds      int    `json:"rounds"`
	Workers     int    `json:"workers"`
	TotalCases  int    `json:"total_cases"`
}

// Artifact is the on-disk record of one evaluation run, written under
// <results_dir>/<stage>/results_<timestamp>.json. Per-case details stay
// in the file so regressions can be diagnosed without a re-run.
type Artifact struct {
	Metadata ArtifactMetadata `json:"metadata"`
	Summary  *RunSummary      `json:"summary"`
	Results  []CaseResult     `json:"results"`
}

const artifactTimeLayout = "20060102_150405"

// WriteArtifact persists a run and returns the created file path.
func WriteArtifact(resultsDir string, metadata ArtifactMetadata, summary *RunSummary, results []CaseResult) (string, error) {
	dir := filepath.Join(resultsDir, metadata.Stage)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}

	if metadata.GeneratedAt == "" {
		metadata.GeneratedAt = time.Now().Format(time.RFC3339)
	}

	artifact := Artifact{Metadata: metadata, Summary: summary, Results: results}
	raw, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("results_%s.json", time.Now().Format(artifactTimeLayout)))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// LoadLatestArtifact reads the newest results file for a stage, going by
// the timestamp embedded in the file name.
func LoadLatestArtifact(resultsDir, stage string) (*Artifact, error) {
	dir := filepath.Join(resultsDir, stage)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading results dir for stage %s: %w", stage, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "results_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no results recorded for stage %s", stage)
	}
	sort.Strings(names)

	raw, err := os.ReadFile(filepath.Join(dir, names[len(names)-1]))
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("parsing artifact: %w", err)
	}
	return &artifact, nil
}

// compareMetrics fixes the row order of the comparison table.
var compareMetrics = []string{
	"accuracy", "keyword_match", "consistency_score", "structure_score",
	"citation_strict_score", "concept_score", "length_score",
}

// RenderComparison prints a metric-by-stage table from the latest
// artifact of each stage. Stages without results show as dashes.
func RenderComparison(resultsDir string, stages []string) (string, error) {
	artifacts := make(map[string]*Artifact, len(stages))
	found := 0
	for _, stage := range stages {
		artifact, err := LoadLatestArtifact(resultsDir, stage)
		if err != nil {
			continue
		}
		artifacts[stage] = artifact
		found++
	}
	if found == 0 {
		return "", fmt.Errorf("no artifacts found under %s", resultsDir)
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprint(w, "metric")
	for _, stage := range stages {
		fmt.Fprintf(w, "\t%s", stage)
	}
	fmt.Fprintln(w)

	for _, metric := range compareMetrics {
		fmt.Fprint(w, metric)
		for _, stage := range stages {
			fmt.Fprintf(w, "\t%s", formatStageMetric(artifacts[stage], metric))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "grade_accuracy")
	for _, stage := range stages {
		if a := artifacts[stage]; a != nil {
			fmt.Fprintf(w, "\t%.1f", a.Summary.GradeAccuracy)
		} else {
			fmt.Fprint(w, "\t-")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "karvonen_rate")
	for _, stage := range stages {
		if a := artifacts[stage]; a != nil {
			fmt.Fprintf(w, "\t%.1f", a.Summary.KarvonenRate)
		} else {
			fmt.Fprint(w, "\t-")
		}
	}
	fmt.Fprintln(w)

	w.Flush()
	return b.String(), nil
}

// formatStageMetric averages a metric across that stage's services.
func formatStageMetric(artifact *Artifact, metric string) string {
	if artifact == nil || artifact.Summary == nil || len(artifact.Summary.Services) == 0 {
		return "-"
	}
	sum, n := 0.0, 0
	for _, avgs := range artifact.Summary.Services {
		if value, ok := avgs[metric]; ok {
			sum += value
			n++
		}
	}
	if n == 0 {
		return "-"
	}
	if metric == "keyword_match" {
		return fmt.Sprintf("%.2f", sum/float64(n))
	}
	return fmt.Sprintf("%.1f", sum/float64(n))
}
