package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/hashing"
	"cipherkit/internal/storage"
	"cipherkit/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatHuman OutputFormat = "human"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatTOML  OutputFormat = "toml"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatHuman, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use human, json, yaml or toml)", s)
	}
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatTOML:
		return formatTOML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatTOML needs a table at the top level, so every CLI response is a
// struct.
func formatTOML(resp interface{}) (string, error) {
	data, err := toml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal TOML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *dispatch.Result:
		return v.Output, nil
	case *HashResponseCLI:
		return formatHashHuman(v), nil
	case *AlgorithmsResponseCLI:
		return formatAlgorithmsHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *StatsResponseCLI:
		return formatStatsHuman(v), nil
	case *StegoResponseCLI:
		return formatStegoHuman(v), nil
	case *ConfigShowResponse:
		return formatConfigHuman(v), nil
	case *version.BuildInfo:
		return fmt.Sprintf("cipherkit %s\nCommit: %s\nBuilt: %s\nGo: %s",
			v.Version, v.Commit, v.BuildDate, v.GoVersion), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// HashResponseCLI lists the digests of one input.
type HashResponseCLI struct {
	Source  string           `json:"source" yaml:"source" toml:"source"`
	Digests []hashing.Digest `json:"digests" yaml:"digests" toml:"digests"`
}

// AlgorithmCLI is one row of `cipherkit algorithms`.
type AlgorithmCLI struct {
	Name          string `json:"name" yaml:"name" toml:"name"`
	Family        string `json:"family" yaml:"family" toml:"family"`
	Usage         string `json:"usage" yaml:"usage" toml:"usage"`
	Description   string `json:"description" yaml:"description" toml:"description"`
	Param         string `json:"param,omitempty" yaml:"param,omitempty" toml:"param,omitempty"`
	ParamRequired bool   `json:"paramRequired" yaml:"paramRequired" toml:"param_required"`
}

// AlgorithmsResponseCLI lists the registry.
type AlgorithmsResponseCLI struct {
	Algorithms []AlgorithmCLI `json:"algorithms" yaml:"algorithms" toml:"algorithms"`
	Long       bool           `json:"-" yaml:"-" toml:"-"`
}

// HistoryResponseCLI lists journal entries, newest first.
type HistoryResponseCLI struct {
	Path    string          `json:"path" yaml:"path" toml:"path"`
	Entries []storage.Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// StatsResponseCLI aggregates the journal per algorithm.
type StatsResponseCLI struct {
	Path  string                  `json:"path" yaml:"path" toml:"path"`
	Stats []storage.AlgorithmStat `json:"stats" yaml:"stats" toml:"stats"`
}

// StegoResponseCLI describes an embed.
type StegoResponseCLI struct {
	Image     string `json:"image" yaml:"image" toml:"image"`
	Channels  string `json:"channels" yaml:"channels" toml:"channels"`
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty" toml:"algorithm,omitempty"`
	Bytes     int    `json:"bytes" yaml:"bytes" toml:"bytes"`
}

func formatHashHuman(resp *HashResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Digests of %s\n", resp.Source)
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, d := range resp.Digests {
		fmt.Fprintf(w, "  %s\t%s\n", d.Algorithm, d.Hex)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatAlgorithmsHuman(resp *AlgorithmsResponseCLI) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	family := ""
	for _, a := range resp.Algorithms {
		if a.Family != family {
			if family != "" {
				fmt.Fprintln(w)
			}
			family = a.Family
			fmt.Fprintf(w, "%s:\n", strings.ToUpper(family))
		}
		if resp.Long && a.Param != "" {
			fmt.Fprintf(w, "  %s\t%s (%s)\n", a.Usage, a.Description, a.Param)
		} else {
			fmt.Fprintf(w, "  %s\t%s\n", a.Usage, a.Description)
		}
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	if len(resp.Entries) == 0 {
		return "No history recorded."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tOPERATION\tALGORITHM\tIN\tOUT\tSTATUS")
	for _, e := range resp.Entries {
		status := "ok"
		if e.ErrorCode != "" {
			status = e.ErrorCode
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Source, e.Operation, e.Algorithm, e.InputLen, e.OutputLen, status)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatStatsHuman(resp *StatsResponseCLI) string {
	if len(resp.Stats) == 0 {
		return "No history recorded."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tRUNS\tFAILURES")
	for _, s := range resp.Stats {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.Algorithm, s.Runs, s.Failures)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatStegoHuman(resp *StegoResponseCLI) string {
	via := "plain text"
	if resp.Algorithm != "" {
		via = resp.Algorithm + " ciphertext"
	}
	return fmt.Sprintf("Embedded %d bytes of %s in %s (channels %s)",
		resp.Bytes, via, resp.Image, resp.Channels)
}
