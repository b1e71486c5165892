package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads pipeline prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error

	watcher   *fsnotify.Watcher
	watchStop chan struct{}
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
var defaultPrompts = map[string]string{
	driven.PromptOptimize: `You are a helpful research assistant. You are given a research topic
that another assistant will use to search the web for relevant information.
Rewrite the topic into a single precise, searchable research query. Preserve the user's
intent, resolve vague wording, and keep it to one sentence.`,

	driven.PromptQuestions: `You are a helpful research assistant. You are given a research query that
another assistant will use to search the web for relevant information.
Your job is to write helpful questions based on the query, to be answered by the user that gave it.
The questions and answers will be passed to the research assistant and will clarify and focus
the search for relevant information. Reply only with the questions.`,

	driven.PromptPlan: `You are a research planner. Given a research brief consisting of a main
topic and clarifications from the user, produce the web searches that best cover the brief.
For each search give the exact term to search for and a short rationale explaining how it
contributes to answering the brief.`,

	driven.PromptSummarize: `You are a research assistant. Given a search term and raw search results,
produce a concise summary of the results. The summary must be 2-3 paragraphs and fewer than 300
words. Capture the main points that matter for the research; ignore fluff. Do not add commentary
beyond the summary itself.`,

	driven.PromptReport: `You are a senior researcher writing a final report for a research query.
You are given the original query and summarised findings from web research. Write a detailed,
well-structured report in markdown: start with a short outline, then develop each section,
and end with the key takeaways. Aim for depth and completeness; include everything relevant
from the findings.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.descry/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".descry", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Watch starts watching the prompt directory and reloads the cache when
// a prompt file changes, so edits take effect without a restart. Call
// StopWatch to release the watcher.
func (s *PromptStore) Watch() error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := watcher.Add(s.promptDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch prompt directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.watchStop = make(chan struct{})
	stop := s.watchStop
	s.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 &&
					strings.HasSuffix(event.Name, ".txt") {
					logger.Debug("Prompt file changed: %s", event.Name)
					s.Reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt watcher error: %v", err)
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// StopWatch stops the prompt directory watcher, if running.
func (s *PromptStore) StopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		close(s.watchStop)
		s.watcher.Close()
		s.watcher = nil
		s.watchStop = nil
	}
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Descry Prompts

This directory contains customisable prompts used by the research pipeline.

## Files

- ` + "`optimize.txt`" + ` - Refines the raw topic into a research query
- ` + "`questions.txt`" + ` - Produces the clarifying questions
- ` + "`plan.txt`" + ` - Plans the web searches
- ` + "`summarize.txt`" + ` - Summarises raw search results
- ` + "`report.txt`" + ` - Synthesises the final report

## Customisation

Edit any file to customise pipeline behaviour. Changes take effect on the
next run, or immediately while the TUI is open.
`
	return os.WriteFile(path, []byte(content), 0600)
}
