package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clawback/internal/dispute"
	"github.com/ppiankov/clawback/internal/ingest"
	"github.com/ppiankov/clawback/internal/model"
	"github.com/ppiankov/clawback/internal/workflow"
)

var (
	triageClaimID      string
	triageContractText string
	triageContractFile string
	triageApprove      bool
	triageTimeout      time.Duration
	triageLedgerPath   string
	triageCheckpoints  string
	triageNoCheckpoint bool
	triageLLMProvider  string
	triageLLMModel     string
)

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:   "triage <export.csv>",
	Short: "Run one claim from an export through the triage workflow",
	Long: `Triage drives a single claim to a filing decision: forensic audit
against the governing contract rule, dispute drafting when a violation
is found, and an append to the audit ledger.

Example:
  clawback triage deductions.csv --claim CLM-1042
  clawback triage deductions.csv --claim CLM-1042 --contract-file walmart_msa.txt
  clawback triage deductions.csv --claim CLM-1042 --approve`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func init() {
	rootCmd.AddCommand(triageCmd)

	triageCmd.Flags().StringVar(&triageClaimID, "claim", "", "claim ID to triage (required)")
	triageCmd.Flags().StringVar(&triageContractText, "contract-text", "", "governing contract rule text")
	triageCmd.Flags().StringVar(&triageContractFile, "contract-file", "", "file containing the governing contract rule")
	triageCmd.Flags().BoolVar(&triageApprove, "approve", false, "inject VP authorization before the filing decision")
	triageCmd.Flags().DurationVar(&triageTimeout, "timeout", 5*time.Minute, "overall run timeout")
	triageCmd.Flags().StringVar(&triageLedgerPath, "ledger", "", "audit ledger CSV path")
	triageCmd.Flags().StringVar(&triageCheckpoints, "checkpoint-dir", "", "checkpoint directory")
	triageCmd.Flags().BoolVar(&triageNoCheckpoint, "no-checkpoint", false, "disable checkpointing (run is not resumable)")
	triageCmd.Flags().StringVar(&triageLLMProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	triageCmd.Flags().StringVar(&triageLLMModel, "llm-model", "", "LLM model name")

	_ = triageCmd.MarkFlagRequired("claim")
}

func runTriage(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), triageTimeout)
	defer cancel()

	export, err := ingest.LoadExport(args[0])
	if err != nil {
		return err
	}
	reportRowErrors(export)

	row, ok := export.Find(triageClaimID)
	if !ok {
		return fmt.Errorf("claim %s not found in %s", triageClaimID, args[0])
	}

	contractText := triageContractText
	if triageContractFile != "" {
		data, err := os.ReadFile(triageContractFile)
		if err != nil {
			return fmt.Errorf("read contract file: %w", err)
		}
		contractText = string(data)
	}

	claim := row.Claim(contractText)
	if triageApprove {
		approved := true
		claim.HumanApproved = &approved
	}

	cfg, err := buildConfig(triageLedgerPath, triageCheckpoints, triageLLMProvider, triageLLMModel, triageNoCheckpoint)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, claim)
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	printRunResult(result, row)
	if result.Outcome == workflow.OutcomeFailed {
		return fmt.Errorf("run halted at %s stage: %w", result.FailedStage, result.Err)
	}

	return nil
}

// printRunResult renders one claim's disposition
func printRunResult(result *workflow.RunResult, row ingest.Row) {
	claim := result.Claim

	fmt.Printf("Claim:      %s (%s, $%.2f)\n", claim.ClaimID, row.Retailer, claim.Amount)
	fmt.Printf("Status:     %s\n", claim.Status)

	switch result.Outcome {
	case workflow.OutcomeFailed:
		fmt.Printf("Outcome:    FAILED at %s stage (resumable from last checkpoint)\n", result.FailedStage)
		return
	case workflow.OutcomeFiled:
		fmt.Printf("Outcome:    filed\n")
	case workflow.OutcomePendingReview:
		fmt.Printf("Outcome:    pending review (above $%.0f threshold, no authorization)\n", model.RiskThreshold)
	}

	if claim.Violation() {
		fmt.Printf("Violation:  yes\n")
		fmt.Printf("Evidence:   %s\n", claim.Evidence)
	} else {
		fmt.Printf("Violation:  no\n")
	}

	if claim.EmailDraft != "" && claim.EmailDraft != model.DraftSkipped {
		fmt.Printf("\nDispute draft (submit via %s):\n\n%s\n", dispute.PortalFor(row.Retailer), claim.EmailDraft)
	}
}

// reportRowErrors surfaces per-row ingestion problems without failing
// the command
func reportRowErrors(export *ingest.Export) {
	for _, rowErr := range export.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", rowErr)
	}
}
