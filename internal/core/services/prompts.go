package services

import "github.com/custodia-labs/descry-cli/internal/core/ports/driven"

// Default stage instructions. Each can be overridden through a
// PromptStore entry with the matching driven.Prompt* name.

const defaultOptimizeInstructions = `You are a helpful research assistant. You are given a research topic
that another assistant will use to search the web for relevant information.
Rewrite the topic into a single precise, searchable research query. Preserve the user's
intent, resolve vague wording, and keep it to one sentence.`

const defaultQuestionsInstructions = `You are a helpful research assistant. You are given a research query that
another assistant will use to search the web for relevant information.
Your job is to write helpful questions based on the query, to be answered by the user that gave it.
The questions and answers will be passed to the research assistant and will clarify and focus
the search for relevant information. Reply only with the questions.`

const defaultPlanInstructions = `You are a research planner. Given a research brief consisting of a main
topic and clarifications from the user, produce the web searches that best cover the brief.
For each search give the exact term to search for and a short rationale explaining how it
contributes to answering the brief.`

const defaultSummarizeInstructions = `You are a research assistant. Given a search term and raw search results,
produce a concise summary of the results. The summary must be 2-3 paragraphs and fewer than 300
words. Capture the main points that matter for the research; ignore fluff. Do not add commentary
beyond the summary itself.`

const defaultReportInstructions = `You are a senior researcher writing a final report for a research query.
You are given the original query and summarised findings from web research. Write a detailed,
well-structured report in markdown: start with a short outline, then develop each section,
and end with the key takeaways. Aim for depth and completeness; include everything relevant
from the findings.`

// defaultInstructions maps prompt names to their built-in fallbacks.
var defaultInstructions = map[string]string{
	driven.PromptOptimize:  defaultOptimizeInstructions,
	driven.PromptQuestions: defaultQuestionsInstructions,
	driven.PromptPlan:      defaultPlanInstructions,
	driven.PromptSummarize: defaultSummarizeInstructions,
	driven.PromptReport:    defaultReportInstructions,
}

// loadInstructions returns the prompt for name from the store, falling
// back to the built-in default if the store is nil or the load fails.
func loadInstructions(store driven.PromptStore, name string) string {
	if store == nil {
		return defaultInstructions[name]
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return defaultInstructions[name]
	}
	return prompt
}
