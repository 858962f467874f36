package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clawback/internal/ingest"
	"github.com/ppiankov/clawback/internal/model"
	"github.com/ppiankov/clawback/internal/worker"
	"github.com/ppiankov/clawback/internal/workflow"
)

var (
	batchHighRiskOnly bool
	batchContractFile string
	batchTimeout      time.Duration
	batchWorkers      int
	batchJSONPath     string
	batchLedgerPath   string
	batchCheckpoints  string
	batchLLMProvider  string
	batchLLMModel     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <export.csv>",
	Short: "Triage every claim in a deduction export concurrently",
	Long: `Batch runs the full triage workflow over each claim in the export.
Claims are processed concurrently across independent workflow runs;
external evaluator and drafting calls are rate limited, and every
disposition lands in the shared audit ledger.

Example:
  clawback batch deductions.csv
  clawback batch deductions.csv --high-risk-only --workers 8
  clawback batch deductions.csv --json triage_report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchHighRiskOnly, "high-risk-only", false, "triage only claims at or above the risk threshold")
	batchCmd.Flags().StringVar(&batchContractFile, "contract-file", "", "file containing the governing contract rule")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel claim runs (default from config)")
	batchCmd.Flags().StringVar(&batchJSONPath, "json", "", "write a JSON triage report to this path")
	batchCmd.Flags().StringVar(&batchLedgerPath, "ledger", "", "audit ledger CSV path")
	batchCmd.Flags().StringVar(&batchCheckpoints, "checkpoint-dir", "", "checkpoint directory")
	batchCmd.Flags().StringVar(&batchLLMProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&batchLLMModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	export, err := ingest.LoadExport(args[0])
	if err != nil {
		return err
	}
	reportRowErrors(export)

	cfg, err := buildConfig(batchLedgerPath, batchCheckpoints, batchLLMProvider, batchLLMModel, false)
	if err != nil {
		return err
	}
	if batchWorkers > 0 {
		cfg.Concurrency.Workers = batchWorkers
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var contractText string
	if batchContractFile != "" {
		data, err := os.ReadFile(batchContractFile)
		if err != nil {
			return fmt.Errorf("read contract file: %w", err)
		}
		contractText = string(data)
	}

	rows := export.Rows
	if batchHighRiskOnly {
		rows = export.HighRisk(cfg.Threshold)
	}

	claims := make([]model.DeductionClaim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, row.Claim(contractText))
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Triaging %d claims with %d workers\n", len(claims), cfg.Concurrency.Workers)
	}

	processor := worker.NewBatchProcessor(engine, cfg.Concurrency.Workers)
	results := processor.Process(ctx, claims)

	summary := summarize(export, results)
	printBatchSummary(summary)

	if batchJSONPath != "" {
		if err := writeBatchReport(batchJSONPath, summary, results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON report: %s\n", batchJSONPath)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d runs failed (resumable; rerun to continue from checkpoints)", summary.Failed, len(results))
	}

	return nil
}

// BatchSummary aggregates the dispositions of one batch run
type BatchSummary struct {
	Total         int     `json:"total"`
	Filed         int     `json:"filed"`
	PendingReview int     `json:"pending_review"`
	Failed        int     `json:"failed"`
	TotalLeakage  float64 `json:"total_leakage"`
	Reclaimed     float64 `json:"reclaimed"` // Filed disputes with a confirmed violation
}

func summarize(export *ingest.Export, results []*worker.TriageResult) BatchSummary {
	summary := BatchSummary{
		Total:        len(results),
		TotalLeakage: export.TotalLeakage(),
	}

	for _, res := range results {
		if res.Error != nil || res.Result == nil {
			summary.Failed++
			continue
		}
		switch res.Result.Outcome {
		case workflow.OutcomeFiled:
			summary.Filed++
			if res.Result.Claim.Violation() {
				summary.Reclaimed += res.Result.Claim.Amount
			}
		case workflow.OutcomePendingReview:
			summary.PendingReview++
		default:
			summary.Failed++
		}
	}

	return summary
}

func printBatchSummary(s BatchSummary) {
	fmt.Printf("Claims triaged:   %d\n", s.Total)
	fmt.Printf("Filed:            %d\n", s.Filed)
	fmt.Printf("Pending review:   %d\n", s.PendingReview)
	fmt.Printf("Failed:           %d\n", s.Failed)
	fmt.Printf("Total leakage:    $%.2f\n", s.TotalLeakage)
	fmt.Printf("Reclaimed:        $%.2f\n", s.Reclaimed)
}

// batchReport is the JSON report schema
type batchReport struct {
	Summary BatchSummary       `json:"summary"`
	Claims  []batchReportClaim `json:"claims"`
}

type batchReportClaim struct {
	ClaimID string               `json:"claim_id"`
	Outcome workflow.Outcome     `json:"outcome"`
	Claim   model.DeductionClaim `json:"claim"`
	Error   string               `json:"error,omitempty"`
}

func writeBatchReport(path string, summary BatchSummary, results []*worker.TriageResult) error {
	report := batchReport{Summary: summary}
	for _, res := range results {
		entry := batchReportClaim{ClaimID: res.ClaimID}
		if res.Error != nil {
			entry.Outcome = workflow.OutcomeFailed
			entry.Error = res.Error.Error()
		} else if res.Result != nil {
			entry.Outcome = res.Result.Outcome
			entry.Claim = res.Result.Claim
			if res.Result.Err != nil {
				entry.Error = res.Result.Err.Error()
			}
		}
		report.Claims = append(report.Claims, entry)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
