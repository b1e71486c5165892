package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

var (
	researchQuestions int
	researchSearches  int
	researchDeliver   bool
	researchJSON      bool
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Run a research pipeline for a topic",
	Long: `Runs the full research pipeline for a topic.

The pipeline optimises your query, asks clarifying questions (answered
on stdin), plans a set of searches, executes them in parallel, and
writes a consolidated report to stdout.

Examples:
  descry research "the state of solid state batteries"
  descry research "rust async runtimes" --searches 8 --deliver`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().IntVarP(&researchQuestions, "questions", "q", 0, "number of clarifying questions (0 = default)")
	researchCmd.Flags().IntVarP(&researchSearches, "searches", "s", 0, "number of planned searches (0 = default)")
	researchCmd.Flags().BoolVar(&researchDeliver, "deliver", false, "email the finished report via the configured notifier")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	if researchService == nil {
		return errors.New("research service not configured")
	}

	opts := driving.RunOptions{
		QuestionCount: researchQuestions,
		SearchCount:   researchSearches,
		Deliver:       researchDeliver,
	}

	// Flags override config; config overrides built-in defaults.
	if configStore != nil {
		if opts.QuestionCount == 0 {
			opts.QuestionCount = configStore.GetInt(driven.ConfigQuestionCount)
		}
		if opts.SearchCount == 0 {
			opts.SearchCount = configStore.GetInt(driven.ConfigSearchCount)
		}
		if !opts.Deliver {
			opts.Deliver = configStore.GetBool(driven.ConfigDeliverReports)
		}
	}

	handle, err := researchService.Start(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("starting research: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	for event := range handle.Events {
		if event.Stage == domain.StageQuestionsReady && len(event.Questions) > 0 {
			if err := collectAnswers(cmd, reader, handle.ID, event.Questions); err != nil {
				return err
			}
			continue
		}
		printEvent(cmd, event)
	}

	state, err := researchService.CurrentState(handle.ID)
	if err != nil {
		return fmt.Errorf("reading run state: %w", err)
	}

	return printOutcome(cmd, state)
}

// collectAnswers prompts for each clarifying question and resumes the run.
func collectAnswers(cmd *cobra.Command, reader *bufio.Reader, runID string, questions []domain.ClarifyingQuestion) error {
	cmd.Println()
	cmd.Println("A few clarifying questions (press enter to skip one):")
	cmd.Println()

	answers := make([]domain.Answer, 0, len(questions))
	for i, q := range questions {
		cmd.Printf("  %d. %s\n", i+1, q.Text)
		cmd.Print("     > ")
		answers = append(answers, domain.Answer{
			QuestionID: q.ID,
			Text:       readLine(reader),
		})
	}
	cmd.Println()

	if err := researchService.SupplyAnswers(runID, answers); err != nil {
		return fmt.Errorf("supplying answers: %w", err)
	}
	return nil
}

// printEvent writes one progress event to stderr so the report body on
// stdout stays clean for piping.
func printEvent(cmd *cobra.Command, event domain.ProgressEvent) {
	prefix := "·"
	if event.Level == domain.LevelWarn {
		prefix = "!"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", prefix, event.Message)
}

// printOutcome writes the final report or the failure to stdout.
func printOutcome(cmd *cobra.Command, state domain.RunState) error {
	switch state.Stage {
	case domain.StageCancelled:
		return errors.New("research cancelled")
	case domain.StageFailed:
		return fmt.Errorf("research failed at stage %s: %s", state.FailedStage, state.FailureCause)
	}

	if state.Report == nil {
		return errors.New("research finished without a report")
	}

	if researchJSON {
		return printReportJSON(cmd, state)
	}

	cmd.Println()
	cmd.Println(state.Report.Body)

	if failed := state.Results.FailureCount(); failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nNote: %d of %d searches failed; the report covers the remainder.\n",
			failed, len(state.Results.Outcomes))
	}

	return nil
}

func printReportJSON(cmd *cobra.Command, state domain.RunState) error {
	out := struct {
		ID          string `json:"id"`
		Query       string `json:"query"`
		Body        string `json:"body"`
		CreatedAt   string `json:"created_at"`
		SearchCount int    `json:"search_count"`
		FailedCount int    `json:"failed_count"`
	}{
		ID:          state.Report.ID,
		Query:       state.Report.Query,
		Body:        state.Report.Body,
		CreatedAt:   state.Report.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		SearchCount: len(state.Results.Outcomes),
		FailedCount: state.Results.FailureCount(),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
