package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// BeginResearchInput is the input schema for the begin_research tool.
type BeginResearchInput struct {
	Topic     string `json:"topic" jsonschema:"the research topic to investigate"`
	Questions int    `json:"questions,omitempty" jsonschema:"number of clarifying questions to ask (default 3)"`
	Searches  int    `json:"searches,omitempty" jsonschema:"number of web searches to plan (default 5)"`
}

// BeginResearchOutput is the output schema for the begin_research tool.
type BeginResearchOutput struct {
	RunID     string           `json:"run_id"`
	Optimized string           `json:"optimized_query"`
	Questions []QuestionOutput `json:"questions"`
}

// QuestionOutput is one clarifying question awaiting an answer.
type QuestionOutput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// AnswerInput is one answer to a clarifying question.
type AnswerInput struct {
	QuestionID string `json:"question_id" jsonschema:"the id of the question being answered"`
	Answer     string `json:"answer" jsonschema:"the answer text"`
}

// CompleteResearchInput is the input schema for the complete_research tool.
type CompleteResearchInput struct {
	RunID   string        `json:"run_id" jsonschema:"the run id returned by begin_research"`
	Answers []AnswerInput `json:"answers" jsonschema:"one answer per clarifying question"`
}

// CompleteResearchOutput is the output schema for the complete_research tool.
type CompleteResearchOutput struct {
	RunID          string `json:"run_id"`
	Report         string `json:"report"`
	SearchCount    int    `json:"search_count"`
	FailedSearches int    `json:"failed_searches"`
}

// CancelResearchInput is the input schema for the cancel_research tool.
type CancelResearchInput struct {
	RunID string `json:"run_id" jsonschema:"the run id to cancel"`
}

// CancelResearchOutput is the output schema for the cancel_research tool.
type CancelResearchOutput struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "begin_research",
		Description: "Start a research run for a topic. Returns the run id and " +
			"clarifying questions to be answered via complete_research.",
	}, s.handleBeginResearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "complete_research",
		Description: "Answer a run's clarifying questions and wait for the " +
			"finished research report.",
	}, s.handleCompleteResearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cancel_research",
		Description: "Cancel an in-flight research run.",
	}, s.handleCancelResearch)
}

// handleBeginResearch starts a run and waits for its clarifying questions.
func (s *Server) handleBeginResearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BeginResearchInput,
) (*mcp.CallToolResult, BeginResearchOutput, error) {
	// The run outlives this tool call; it is resumed by complete_research.
	handle, err := s.ports.Research.Start(context.WithoutCancel(ctx), input.Topic, driving.RunOptions{
		QuestionCount: input.Questions,
		SearchCount:   input.Searches,
	})
	if err != nil {
		return nil, BeginResearchOutput{}, err
	}
	s.trackRun(handle)

	// Consume events until the run suspends with its questions, or
	// terminates early (stage failure before clarification).
	for {
		select {
		case event, ok := <-handle.Events:
			if !ok {
				return nil, BeginResearchOutput{}, s.runFailure(handle.ID)
			}
			if event.Stage != domain.StageQuestionsReady {
				continue
			}

			state, err := s.ports.Research.CurrentState(handle.ID)
			if err != nil {
				return nil, BeginResearchOutput{}, err
			}
			output := BeginResearchOutput{
				RunID:     handle.ID,
				Optimized: state.Optimized.Text,
				Questions: make([]QuestionOutput, len(event.Questions)),
			}
			for i, q := range event.Questions {
				output.Questions[i] = QuestionOutput{ID: q.ID, Text: q.Text}
			}
			return nil, output, nil
		case <-ctx.Done():
			return nil, BeginResearchOutput{}, ctx.Err()
		}
	}
}

// handleCompleteResearch resumes a suspended run and waits for the report.
func (s *Server) handleCompleteResearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompleteResearchInput,
) (*mcp.CallToolResult, CompleteResearchOutput, error) {
	handle, ok := s.takeRun(input.RunID)
	if !ok {
		return nil, CompleteResearchOutput{}, fmt.Errorf("%w: %s", ErrUnknownRun, input.RunID)
	}

	answers := make([]domain.Answer, len(input.Answers))
	for i, a := range input.Answers {
		answers[i] = domain.Answer{QuestionID: a.QuestionID, Text: a.Answer}
	}

	if err := s.ports.Research.SupplyAnswers(input.RunID, answers); err != nil {
		// Rejected answers leave the run suspended and resumable.
		s.trackRun(handle)
		return nil, CompleteResearchOutput{}, err
	}

	// Drain the event stream to the terminal stage.
	for {
		select {
		case _, ok := <-handle.Events:
			if ok {
				continue
			}
		case <-ctx.Done():
			return nil, CompleteResearchOutput{}, ctx.Err()
		}
		break
	}

	state, err := s.ports.Research.CurrentState(input.RunID)
	if err != nil {
		return nil, CompleteResearchOutput{}, err
	}
	if state.Report == nil {
		return nil, CompleteResearchOutput{}, s.runFailure(input.RunID)
	}

	return nil, CompleteResearchOutput{
		RunID:          input.RunID,
		Report:         state.Report.Body,
		SearchCount:    len(state.Results.Outcomes),
		FailedSearches: state.Results.FailureCount(),
	}, nil
}

// handleCancelResearch cancels a run.
func (s *Server) handleCancelResearch(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CancelResearchInput,
) (*mcp.CallToolResult, CancelResearchOutput, error) {
	if err := s.ports.Research.Cancel(input.RunID); err != nil {
		return nil, CancelResearchOutput{}, err
	}

	state, err := s.ports.Research.CurrentState(input.RunID)
	if err != nil {
		return nil, CancelResearchOutput{}, err
	}

	return nil, CancelResearchOutput{
		RunID: input.RunID,
		Stage: state.Stage.String(),
	}, nil
}

// runFailure reports why a run terminated without a report.
func (s *Server) runFailure(runID string) error {
	state, err := s.ports.Research.CurrentState(runID)
	if err != nil {
		return err
	}
	if state.Stage == domain.StageCancelled {
		return fmt.Errorf("run %s: %w", runID, domain.ErrRunCancelled)
	}
	return fmt.Errorf("run %s failed at stage %s: %s",
		runID, state.FailedStage, state.FailureCause)
}
