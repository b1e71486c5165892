package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

var reportsJSON bool

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved research reports",
	Long:  `List, show and delete reports archived from finished research runs.`,
	RunE:  runReportsList,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsDelete,
}

func init() {
	reportsCmd.PersistentFlags().BoolVar(&reportsJSON, "json", false, "output as JSON")
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)
	rootCmd.AddCommand(reportsCmd)
}

func runReportsList(cmd *cobra.Command, _ []string) error {
	if reportStore == nil {
		return errors.New("report store not configured")
	}

	reports, err := reportStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	if reportsJSON {
		return outputReportsJSON(cmd, reports)
	}

	if len(reports) == 0 {
		cmd.Println("No saved reports.")
		return nil
	}

	cmd.Println("Saved reports:")
	cmd.Println()
	for i := range reports {
		cmd.Printf("  %s  %s  %s\n",
			reports[i].ID,
			reports[i].CreatedAt.Format("2006-01-02 15:04"),
			reports[i].Query)
	}
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	if reportStore == nil {
		return errors.New("report store not configured")
	}

	report, err := reportStore.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no report with id %q", args[0])
		}
		return fmt.Errorf("reading report: %w", err)
	}

	if reportsJSON {
		return outputReportsJSON(cmd, []domain.Report{*report})
	}

	cmd.Println(report.Body)
	return nil
}

func runReportsDelete(cmd *cobra.Command, args []string) error {
	if reportStore == nil {
		return errors.New("report store not configured")
	}

	if err := reportStore.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no report with id %q", args[0])
		}
		return fmt.Errorf("deleting report: %w", err)
	}

	cmd.Printf("Deleted report %s\n", args[0])
	return nil
}

func outputReportsJSON(cmd *cobra.Command, reports []domain.Report) error {
	type entry struct {
		ID        string `json:"id"`
		Query     string `json:"query"`
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
	}

	entries := make([]entry, 0, len(reports))
	for i := range reports {
		entries = append(entries, entry{
			ID:        reports[i].ID,
			Query:     reports[i].Query,
			Body:      reports[i].Body,
			CreatedAt: reports[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling reports: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
