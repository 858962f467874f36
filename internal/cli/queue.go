package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clawback/internal/ingest"
	"github.com/ppiankov/clawback/internal/model"
)

// queueCmd represents the queue command
var queueCmd = &cobra.Command{
	Use:   "queue <export.csv>",
	Short: "Show the high-risk exception queue for a deduction export",
	Long: `Queue lists the claims at or above the risk threshold, flagged for
VP authorization, along with total exposure and per-retailer
concentration. Claims below the threshold are auto-accepted losses.

Example:
  clawback queue deductions.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	export, err := ingest.LoadExport(args[0])
	if err != nil {
		return err
	}
	reportRowErrors(export)

	fmt.Printf("Total P&L leakage: $%.2f across %d claims\n\n", export.TotalLeakage(), len(export.Rows))

	flagged := export.HighRisk(model.RiskThreshold)
	fmt.Printf("High-risk exception queue (>= $%.0f, VP authorization required): %d claims\n", model.RiskThreshold, len(flagged))
	for _, row := range flagged {
		fmt.Printf("  %-12s  %-10s  %-12s  %-8s  $%9.2f  %s\n",
			row.ClaimID, row.Date, row.Retailer, row.ReasonCode, row.ClaimedAmount, row.Description)
	}

	totals := export.RetailerTotals()
	retailers := make([]string, 0, len(totals))
	for retailer := range totals {
		retailers = append(retailers, retailer)
	}
	sort.Slice(retailers, func(i, j int) bool {
		return totals[retailers[i]] > totals[retailers[j]]
	})

	fmt.Printf("\nRetailer concentration:\n")
	for _, retailer := range retailers {
		fmt.Printf("  %-15s $%.2f\n", retailer, totals[retailer])
	}

	return nil
}
