package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/siemcac/siemcac/internal/application/dto"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// TableFormatter renders reports as human-readable text.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// FormatResolution writes a resolution report as a table.
func (f *TableFormatter) FormatResolution(report *ResolutionReport) error {
	fmt.Fprintf(f.writer, "Template: %s\n", report.TemplateRef)
	fmt.Fprintf(f.writer, "Chain:    %s\n", strings.Join(report.Chain, " -> "))
	fmt.Fprintln(f.writer)

	if len(report.Resources) > 0 {
		fmt.Fprintln(f.writer, "Resources:")
		for _, resourceType := range entities.ResourceTypes() {
			if n := len(report.Resources[resourceType]); n > 0 {
				fmt.Fprintf(f.writer, "  %-24s %d\n", resourceType, n)
			}
		}
		fmt.Fprintln(f.writer)
	}

	f.formatDiagnostics(report.Diagnostics)

	if len(report.DeploymentOrder) > 0 {
		fmt.Fprintf(f.writer, "Deployment order: %s\n", strings.Join(report.DeploymentOrder, ", "))
	}
	return nil
}

// FormatPlan writes a change plan as a table.
func (f *TableFormatter) FormatPlan(report *PlanReport) error {
	fmt.Fprintf(f.writer, "Template: %s\n\n", report.TemplateRef)

	f.formatDiagnostics(report.Diagnostics)

	if len(report.Changes) == 0 {
		fmt.Fprintln(f.writer, "No changes. Fleet matches the template.")
		return nil
	}

	fmt.Fprintln(f.writer, "Planned changes:")
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	for _, change := range report.Changes {
		fmt.Fprintf(f.writer, "%s %-8s %s/%s on %s\n",
			changeSymbol(change.Kind), change.Kind, change.ResourceType, change.Resource, change.Node)
		if change.Diff != "" {
			for _, line := range strings.Split(strings.TrimRight(change.Diff, "\n"), "\n") {
				fmt.Fprintf(f.writer, "    %s\n", line)
			}
		}
	}
	fmt.Fprintln(f.writer, strings.Repeat("─", 80))
	fmt.Fprintf(f.writer, "Total: %d change(s)\n", len(report.Changes))
	return nil
}

func (f *TableFormatter) formatDiagnostics(diags []entities.Diagnostic) {
	if len(diags) == 0 {
		fmt.Fprintln(f.writer, "Validation: clean")
		fmt.Fprintln(f.writer)
		return
	}

	errors, warnings := 0, 0
	fmt.Fprintln(f.writer, "Diagnostics:")
	for _, d := range diags {
		symbol := "⚠"
		if d.Severity == entities.SeverityError {
			symbol = "✗"
			errors++
		} else {
			warnings++
		}
		fmt.Fprintf(f.writer, "  %s %s\n", symbol, d.String())
	}
	fmt.Fprintf(f.writer, "\n%d error(s), %d warning(s)\n\n", errors, warnings)
}

func changeSymbol(kind dto.ChangeKind) string {
	switch kind {
	case dto.ChangeCreate:
		return "+"
	case dto.ChangeDelete:
		return "-"
	default:
		return "~"
	}
}
