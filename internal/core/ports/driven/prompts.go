package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used by the pipeline stages.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptOptimize refines the raw query into a sharper research topic.
	PromptOptimize = "optimize"

	// PromptQuestions produces the clarifying questions for a topic.
	PromptQuestions = "questions"

	// PromptPlan produces the search plan from the enriched query.
	PromptPlan = "plan"

	// PromptSummarize condenses raw search results for one term.
	PromptSummarize = "summarize"

	// PromptReport synthesises the final markdown report.
	PromptReport = "report"
)
