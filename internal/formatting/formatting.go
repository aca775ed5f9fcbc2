// Package formatting renders runtime data (mode listings, state listings,
// validation reports, execution results) for the CLI in console, table, or
// JSON form.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"parley/internal/config"
	"parley/internal/mode"
	"parley/internal/state"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	// FormatTable renders rich tables (the default).
	FormatTable OutputFormat = "table"
	// FormatJSON renders raw JSON data.
	FormatJSON OutputFormat = "json"
)

// ValidateOutputFormat checks a user-supplied format string.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json)", format)
	}
}

// Options configures the formatter behavior.
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements and timing
	Color  bool // Enable colored output
	Output io.Writer
}

// Formatter renders runtime data according to its options.
type Formatter struct {
	options Options
}

// New creates a formatter. A nil output writer defaults to stdout.
func New(options Options) *Formatter {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Format == "" {
		options.Format = FormatTable
	}
	return &Formatter{options: options}
}

// ModeList renders the registered modes.
func (f *Formatter) ModeList(descriptors []mode.Descriptor) error {
	if f.options.Format == FormatJSON {
		type row struct {
			ID           string   `json:"id"`
			Description  string   `json:"description"`
			Dependencies []string `json:"dependencies,omitempty"`
			LoadPriority int      `json:"loadPriority"`
			Enabled      bool     `json:"enabled"`
		}
		rows := make([]row, 0, len(descriptors))
		for _, d := range descriptors {
			rows = append(rows, row{d.ID, d.Description, d.Dependencies, d.LoadPriority, d.Enabled})
		}
		return f.renderJSON(rows)
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"MODE", "DESCRIPTION", "DEPENDS ON", "PRIORITY", "ENABLED"})
	for _, d := range descriptors {
		deps := strings.Join(d.Dependencies, ", ")
		if deps == "" {
			deps = "-"
		}
		t.AppendRow(table.Row{d.ID, d.Description, deps, d.LoadPriority, f.formatEnabled(d.Enabled)})
	}
	t.Render()
	return nil
}

// StateList renders the stored records of one mode.
func (f *Formatter) StateList(records []*state.Record) error {
	if f.options.Format == FormatJSON {
		return f.renderJSON(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(f.options.Output, f.colored(text.FgYellow, "No stored state"))
		return nil
	}

	t := f.newTable()
	t.AppendHeader(table.Row{"STATE", "MODE", "SCHEMA", "UPDATED", "ARTIFACTS"})
	for _, r := range records {
		schema := r.SchemaVersion
		if schema == "" {
			schema = "legacy"
		}
		t.AppendRow(table.Row{
			r.ID,
			r.ModeID,
			schema,
			r.Timestamp.UTC().Format(time.RFC3339),
			len(r.Artifacts),
		})
	}
	t.Render()
	return nil
}

// Report renders a validation report for one mode.
func (f *Formatter) Report(modeID string, report *mode.Report) error {
	if f.options.Format == FormatJSON {
		return f.renderJSON(struct {
			Mode string `json:"mode"`
			*mode.Report
		}{modeID, report})
	}

	status := f.colored(text.FgGreen, "valid")
	if !report.Valid {
		status = f.colored(text.FgRed, "invalid")
	}
	fmt.Fprintf(f.options.Output, "%s: %s\n", modeID, status)
	for _, e := range report.Errors {
		fmt.Fprintf(f.options.Output, "  %s %s\n", f.colored(text.FgRed, "error:"), e)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(f.options.Output, "  %s %s\n", f.colored(text.FgYellow, "warning:"), w)
	}
	return nil
}

// Result renders one execution result: the payload, any warnings, and the
// timing line unless quiet.
func (f *Formatter) Result(result *mode.Result) error {
	if f.options.Format == FormatJSON {
		return f.renderJSON(result)
	}

	if !result.Success {
		fmt.Fprintf(f.options.Output, "%s %s\n", f.colored(text.FgRed, "error:"), result.Error)
	} else if result.Data != nil {
		fmt.Fprintf(f.options.Output, "%v\n", result.Data)
	}

	if result.Metadata != nil {
		for _, w := range result.Metadata.Warnings {
			fmt.Fprintf(f.options.Output, "%s %s\n", f.colored(text.FgYellow, "warning:"), w)
		}
		if !f.options.Quiet {
			fmt.Fprintf(f.options.Output, "%s\n", f.colored(text.Faint, fmt.Sprintf("(%s)", result.Metadata.ExecutionTime.Round(time.Millisecond))))
		}
	}
	return nil
}

// Recovery renders the outcome of a configuration recovery attempt.
func (f *Formatter) Recovery(result *config.RecoveryResult) error {
	if f.options.Format == FormatJSON {
		return f.renderJSON(result)
	}

	if !result.Recovered {
		fmt.Fprintln(f.options.Output, f.colored(text.FgGreen, "Configuration is valid"))
		return nil
	}

	fmt.Fprintln(f.options.Output, f.colored(text.FgYellow, "Configuration was corrupt and has been reset to defaults:"))
	for _, e := range result.Errors {
		fmt.Fprintf(f.options.Output, "  - %s\n", e)
	}
	return nil
}

func (f *Formatter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Output)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *Formatter) renderJSON(v interface{}) error {
	enc := json.NewEncoder(f.options.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *Formatter) formatEnabled(enabled bool) string {
	if enabled {
		return f.colored(text.FgGreen, "yes")
	}
	return f.colored(text.FgRed, "no")
}

func (f *Formatter) colored(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}
