package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the completion provider, search provider and
report delivery options.

Use 'settings setup' for an interactive wizard, or get/set for
individual keys.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a single setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Long:  `Configure the completion provider, search provider and delivery step by step.`,
	RunE:  runSettingsSetup,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetupCmd)
	rootCmd.AddCommand(settingsCmd)
}

// secretKeys are masked in show/get output.
var secretKeys = map[string]bool{
	driven.ConfigLLMAPIKey:    true,
	driven.ConfigGoogleAPIKey: true,
	driven.ConfigGitHubToken:  true,
	driven.ConfigSMTPPassword: true,
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Completion]")
	printSetting(cmd, "Provider", driven.ConfigLLMProvider, "openai")
	printSetting(cmd, "Model", driven.ConfigLLMModel, "(provider default)")
	printSecret(cmd, "API Key", driven.ConfigLLMAPIKey)
	cmd.Println()

	cmd.Println("[Search]")
	printSetting(cmd, "Provider", driven.ConfigSearchProvider, "duckduckgo")
	printSecret(cmd, "Google API Key", driven.ConfigGoogleAPIKey)
	printSetting(cmd, "Google Engine ID", driven.ConfigGoogleEngineID, "(not set)")
	printSecret(cmd, "GitHub Token", driven.ConfigGitHubToken)
	cmd.Println()

	cmd.Println("[Research]")
	questions := configStore.GetInt(driven.ConfigQuestionCount)
	if questions == 0 {
		cmd.Printf("  Questions: (default)\n")
	} else {
		cmd.Printf("  Questions: %d\n", questions)
	}
	searches := configStore.GetInt(driven.ConfigSearchCount)
	if searches == 0 {
		cmd.Printf("  Searches: (default)\n")
	} else {
		cmd.Printf("  Searches: %d\n", searches)
	}
	cmd.Printf("  Deliver reports: %t\n", configStore.GetBool(driven.ConfigDeliverReports))
	cmd.Println()

	cmd.Println("[Delivery]")
	printSetting(cmd, "SMTP Host", driven.ConfigSMTPHost, "(not set)")
	if port := configStore.GetInt(driven.ConfigSMTPPort); port > 0 {
		cmd.Printf("  SMTP Port: %d\n", port)
	}
	printSetting(cmd, "From", driven.ConfigSMTPFrom, "(not set)")
	printSetting(cmd, "To", driven.ConfigSMTPTo, "(not set)")
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func printSetting(cmd *cobra.Command, label, key, fallback string) {
	value := configStore.GetString(key)
	if value == "" {
		value = fallback
	}
	cmd.Printf("  %s: %s\n", label, value)
}

func printSecret(cmd *cobra.Command, label, key string) {
	value := configStore.GetString(key)
	if value == "" {
		cmd.Printf("  %s: (not set)\n", label)
		return
	}
	cmd.Printf("  %s: %s\n", label, maskAPIKey(value))
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("no setting named %q", args[0])
	}

	if s, isString := value.(string); isString && secretKeys[args[0]] {
		cmd.Println(maskAPIKey(s))
		return nil
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]

	// Coerce to the natural type so the TOML stays well-typed.
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = n
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsSetup(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Descry Setup")
	cmd.Println("============")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	if err := setupCompletionProvider(cmd, reader); err != nil {
		return err
	}
	if err := setupSearchProvider(cmd, reader); err != nil {
		return err
	}
	if err := setupDelivery(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Setup complete.")
	cmd.Printf("Settings saved to %s\n", configStore.Path())
	return nil
}

func setupCompletionProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Step 1: Completion Provider")
	cmd.Println("---------------------------")
	providers := []string{"openai", "anthropic", "ollama"}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	if err := configStore.Set(driven.ConfigLLMProvider, provider); err != nil {
		return fmt.Errorf("saving provider: %w", err)
	}

	if provider != "ollama" {
		cmd.Print("Enter API key: ")
		apiKey := readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("an API key is required for this provider")
		}
		if err := configStore.Set(driven.ConfigLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("saving API key: %w", err)
		}
	}

	cmd.Printf("Completion provider: %s\n\n", provider)
	return nil
}

func setupSearchProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Step 2: Search Provider")
	cmd.Println("-----------------------")
	providers := []string{"duckduckgo (no key required)", "google", "github"}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)

	switch idx {
	case 2:
		if err := configStore.Set(driven.ConfigSearchProvider, "google"); err != nil {
			return fmt.Errorf("saving provider: %w", err)
		}
		cmd.Print("Enter Google API key: ")
		apiKey := readPassword()
		cmd.Println()
		cmd.Print("Enter search engine ID: ")
		engineID := readLine(reader)
		if apiKey == "" || engineID == "" {
			return errors.New("google search requires an API key and engine ID")
		}
		if err := configStore.Set(driven.ConfigGoogleAPIKey, apiKey); err != nil {
			return fmt.Errorf("saving API key: %w", err)
		}
		if err := configStore.Set(driven.ConfigGoogleEngineID, engineID); err != nil {
			return fmt.Errorf("saving engine ID: %w", err)
		}
		cmd.Println("Search provider: google")

	case 3:
		if err := configStore.Set(driven.ConfigSearchProvider, "github"); err != nil {
			return fmt.Errorf("saving provider: %w", err)
		}
		cmd.Print("Enter GitHub token (optional, raises rate limits): ")
		token := readPassword()
		cmd.Println()
		if token != "" {
			if err := configStore.Set(driven.ConfigGitHubToken, token); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
		}
		cmd.Println("Search provider: github")

	default:
		if err := configStore.Set(driven.ConfigSearchProvider, "duckduckgo"); err != nil {
			return fmt.Errorf("saving provider: %w", err)
		}
		cmd.Println("Search provider: duckduckgo")
	}

	cmd.Println()
	return nil
}

func setupDelivery(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Step 3: Report Delivery (optional)")
	cmd.Println("----------------------------------")
	cmd.Print("Email finished reports? [y/N]: ")
	if !strings.EqualFold(readLine(reader), "y") {
		cmd.Println("Skipped.")
		cmd.Println()
		return nil
	}

	cmd.Print("SMTP host: ")
	host := readLine(reader)
	cmd.Print("SMTP port [587]: ")
	port := parseChoice(readLine(reader), 65535, 587)
	cmd.Print("SMTP username: ")
	user := readLine(reader)
	cmd.Print("SMTP password: ")
	password := readPassword()
	cmd.Println()
	cmd.Print("From address: ")
	from := readLine(reader)
	cmd.Print("To address: ")
	to := readLine(reader)

	if host == "" || from == "" || to == "" {
		return errors.New("delivery requires a host, from address and to address")
	}

	settings := map[string]any{
		driven.ConfigSMTPHost:       host,
		driven.ConfigSMTPPort:       port,
		driven.ConfigSMTPUser:       user,
		driven.ConfigSMTPPassword:   password,
		driven.ConfigSMTPFrom:       from,
		driven.ConfigSMTPTo:         to,
		driven.ConfigDeliverReports: true,
	}
	for key, value := range settings {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	cmd.Println("Delivery configured.")
	cmd.Println()
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
