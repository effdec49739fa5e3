package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cipherkit/internal/config"
	"cipherkit/internal/paths"
)

var (
	configShowDiff bool
	configForce    bool
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage cipherkit configuration",
	Long:        "View and manage cipherkit configuration stored in ~/.cipherkit/config.toml",
	Annotations: map[string]string{lenient: "true"},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: file values, then CIPHERKIT_*
environment overrides, over the defaults.

Examples:
  cipherkit config show              # key = value listing
  cipherkit config show --format toml
  cipherkit config show --diff       # Only show non-default values`,
	Annotations: map[string]string{lenient: "true"},
	RunE:        runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a default config file",
	Annotations: map[string]string{lenient: "true"},
	RunE:        runConfigInit,
}

var configEnvCmd = &cobra.Command{
	Use:         "env",
	Short:       "List supported environment variables",
	Long:        "Display all supported CIPHERKIT_* environment variable overrides",
	Annotations: map[string]string{lenient: "true"},
	RunE:        runConfigEnv,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string         `json:"configPath" yaml:"configPath" toml:"config_path"`
	UsedDefaults bool           `json:"usedDefaults" yaml:"usedDefaults" toml:"used_defaults"`
	EnvOverrides []string       `json:"envOverrides,omitempty" yaml:"envOverrides,omitempty" toml:"env_overrides,omitempty"`
	Config       *config.Config `json:"config" yaml:"config" toml:"config"`

	settings []config.Setting
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, statErr := os.Stat(cfgPath)
	resp := &ConfigShowResponse{
		ConfigPath:   cfgPath,
		UsedDefaults: os.IsNotExist(statErr),
		EnvOverrides: envOverrides(cfg),
		Config:       cfg,
		settings:     cfg.Settings(),
	}
	if configShowDiff {
		resp.settings = diffSettings(cfg.Settings(), config.DefaultConfig().Settings())
	}
	return writeOutput(cmd.OutOrStdout(), resp)
}

// envOverrides names the CIPHERKIT_* variables currently set.
func envOverrides(c *config.Config) []string {
	var names []string
	for _, s := range c.Settings() {
		if _, ok := os.LookupEnv(s.EnvName()); ok {
			names = append(names, s.EnvName())
		}
	}
	sort.Strings(names)
	return names
}

func diffSettings(current, defaults []config.Setting) []config.Setting {
	byKey := make(map[string]interface{}, len(defaults))
	for _, s := range defaults {
		byKey[s.Key] = s.Value
	}

	var diff []config.Setting
	for _, s := range current {
		if !isEqual(s.Value, byKey[s.Key]) {
			diff = append(diff, s)
		}
	}
	return diff
}

// isEqual compares setting values by their printed form, so []string
// slices compare by content.
func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func formatConfigHuman(resp *ConfigShowResponse) string {
	var b strings.Builder
	source := resp.ConfigPath
	if resp.UsedDefaults {
		source += " (not found, using defaults)"
	}
	fmt.Fprintf(&b, "Config: %s\n", source)
	if len(resp.EnvOverrides) > 0 {
		fmt.Fprintf(&b, "Environment overrides: %s\n", strings.Join(resp.EnvOverrides, ", "))
	}
	b.WriteString("\n")

	if len(resp.settings) == 0 {
		b.WriteString("All values are defaults.")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)
	for _, s := range resp.settings {
		fmt.Fprintf(w, "%s\t= %s\n", s.Key, formatSettingValue(s.Value))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatSettingValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case []string:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	if err := config.DefaultConfig().Save(cfgPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", cfgPath)
	return err
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIABLE\tKEY\tDEFAULT")
	for _, s := range config.DefaultConfig().Settings() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.EnvName(), s.Key, formatSettingValue(s.Value))
	}
	fmt.Fprintf(w, "%s\t-\t%s\n", paths.HomeEnvVar, "~/"+paths.DefaultHomeDir)
	return w.Flush()
}
