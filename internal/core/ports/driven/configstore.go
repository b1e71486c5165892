package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// Configuration keys used across the application. Keys use dot notation
// matching the TOML table layout.
const (
	// ConfigLLMProvider selects the completion provider (openai, anthropic, ollama).
	ConfigLLMProvider = "llm.provider"

	// ConfigLLMAPIKey is the completion provider API key.
	ConfigLLMAPIKey = "llm.api_key"

	// ConfigLLMModel overrides the provider's default model.
	ConfigLLMModel = "llm.model"

	// ConfigSearchProvider selects the search provider (google, github, duckduckgo).
	ConfigSearchProvider = "search.provider"

	// ConfigGoogleAPIKey is the Google Programmable Search API key.
	ConfigGoogleAPIKey = "search.google_api_key"

	// ConfigGoogleEngineID is the Google Programmable Search engine id.
	ConfigGoogleEngineID = "search.google_engine_id"

	// ConfigGitHubToken is the GitHub personal access token.
	ConfigGitHubToken = "search.github_token"

	// ConfigQuestionCount is the number of clarifying questions per run.
	ConfigQuestionCount = "research.questions"

	// ConfigSearchCount is the number of planned searches per run.
	ConfigSearchCount = "research.searches"

	// ConfigDeliverReports enables report delivery by default.
	ConfigDeliverReports = "research.deliver"

	// ConfigSMTPHost is the SMTP server host for report delivery.
	ConfigSMTPHost = "notify.smtp_host"

	// ConfigSMTPPort is the SMTP server port.
	ConfigSMTPPort = "notify.smtp_port"

	// ConfigSMTPUser is the SMTP username.
	ConfigSMTPUser = "notify.smtp_user"

	// ConfigSMTPPassword is the SMTP password.
	ConfigSMTPPassword = "notify.smtp_password"

	// ConfigSMTPFrom is the sender address for delivered reports.
	ConfigSMTPFrom = "notify.from"

	// ConfigSMTPTo is the recipient address for delivered reports.
	ConfigSMTPTo = "notify.to"
)
