// Command evaluate runs the response-quality harness against a coaching
// backend and compares recorded runs across stages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/config"
	"github.com/health-coach-server/internal/domain"
	"github.com/health-coach-server/internal/evaluation"
	"github.com/health-coach-server/internal/service"
	"github.com/health-coach-server/pkg/llm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(os.Args[2:])
	case "compare":
		err = compareCommand(os.Args[2:])
	case "help", "--help", "-h":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("evaluate %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  evaluate run [-mode direct_api|chain_framework|fine_tuned] [-stage name]
               [-rounds n] [-workers n] [-dataset dir] [-results dir]
  evaluate compare [-results dir] [-stages a,b,c]`)
}

func runCommand(args []string) error {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	mode := flags.String("mode", string(domain.ModeDirectAPI), "analysis mode to evaluate")
	stage := flags.String("stage", "", "stage label for the artifact (defaults to the mode)")
	rounds := flags.Int("rounds", 0, "repeat rounds per case (defaults to config)")
	workers := flags.Int("workers", 0, "concurrent cases (defaults to config)")
	dataset := flags.String("dataset", "", "dataset directory (defaults to config, then the bundled cases)")
	results := flags.String("results", "", "results directory (defaults to config)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	configManager, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg := configManager.GetConfig()

	evalConfig := cfg.Evaluation
	if *rounds > 0 {
		evalConfig.Rounds = *rounds
	}
	if *workers > 0 {
		evalConfig.Workers = *workers
	}
	if *dataset != "" {
		evalConfig.DatasetDir = *dataset
	}
	if *results != "" {
		evalConfig.ResultsDir = *results
	}
	if evalConfig.ResultsDir == "" {
		evalConfig.ResultsDir = "results"
	}

	analysisMode := domain.AnalysisMode(*mode)
	if !analysisMode.IsValid() {
		return fmt.Errorf("unknown analysis mode %q", *mode)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cases, err := loadCases(evalConfig.DatasetDir)
	if err != nil {
		return err
	}

	producer := evaluation.NewAnalyzerProducer(buildAnalyzer(cfg, logger), analysisMode, *stage)
	runner := evaluation.NewRunner(producer, evalConfig, logger)

	caseResults, summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		return err
	}

	path, err := evaluation.WriteArtifact(evalConfig.ResultsDir, evaluation.ArtifactMetadata{
		Stage:      summary.Stage,
		Rounds:     evalConfig.Rounds,
		Workers:    evalConfig.Workers,
		TotalCases: summary.TotalCases,
	}, summary, caseResults)
	if err != nil {
		return err
	}

	printSummary(summary, path)
	return nil
}

func compareCommand(args []string) error {
	flags := flag.NewFlagSet("compare", flag.ExitOnError)
	results := flags.String("results", "results", "results directory")
	stages := flags.String("stages", "direct_api,chain_framework,fine_tuned", "comma-separated stage names")
	if err := flags.Parse(args); err != nil {
		return err
	}

	table, err := evaluation.RenderComparison(*results, strings.Split(*stages, ","))
	if err != nil {
		return err
	}
	fmt.Print(table)
	return nil
}

func loadCases(datasetDir string) ([]evaluation.EvaluationCase, error) {
	if datasetDir == "" {
		return evaluation.BuiltinDataset(), nil
	}
	return evaluation.LoadDataset(datasetDir)
}

func buildAnalyzer(cfg *domain.Config, logger *logrus.Logger) *service.Analyzer {
	knowledge := service.KnowledgeCatalog()
	engines := make(map[domain.AnalysisMode]domain.AnalysisEngine)
	if cfg.LLM.DirectAPI.BaseURL != "" {
		engines[domain.ModeDirectAPI] = llm.NewDirectEngine(cfg.LLM.DirectAPI, knowledge, logger)
	}
	if cfg.LLM.Chain.BaseURL != "" {
		engines[domain.ModeChainFramework] = llm.NewChainEngine(cfg.LLM.Chain, knowledge, logger)
	}
	if cfg.LLM.FineTuned.BaseURL != "" {
		engines[domain.ModeFineTuned] = llm.NewFineTunedEngine(cfg.LLM.FineTuned, knowledge, logger)
	}

	return service.NewAnalyzer(logger,
		service.NewHealthInterpreter(logger),
		service.NewRoutineBuilder(logger),
		engines, nil, cfg.Analysis.RequestTimeout)
}

func printSummary(summary *evaluation.RunSummary, artifactPath string) {
	fmt.Printf("stage %s: %d cases (%d errored), overall accuracy %.1f\n",
		summary.Stage, summary.TotalCases, summary.ErroredCases, summary.Overall)
	for name, avgs := range summary.Services {
		fmt.Printf("  %s: accuracy %.1f, keyword %.2f, consistency %.1f, structure %.1f\n",
			name, avgs["accuracy"], avgs["keyword_match"], avgs["consistency_score"], avgs["structure_score"])
	}
	if summary.GradeAccuracy > 0 {
		fmt.Printf("  grade accuracy: %.1f\n", summary.GradeAccuracy)
	}
	if summary.KarvonenRate > 0 {
		fmt.Printf("  karvonen application rate: %.1f\n", summary.KarvonenRate)
	}
	fmt.Printf("results written to %s\n", artifactPath)
}
