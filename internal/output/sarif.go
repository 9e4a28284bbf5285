package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/version"
)

// SARIFFormatter renders resolution diagnostics as SARIF 2.1.0 JSON so
// CI systems can annotate template repositories with the findings.
type SARIFFormatter struct {
	writer       io.Writer
	templatePath string
}

// NewSARIFFormatter creates a new SARIF formatter. templatePath names
// the document the diagnostics refer to.
func NewSARIFFormatter(writer io.Writer, templatePath string) *SARIFFormatter {
	return &SARIFFormatter{writer: writer, templatePath: templatePath}
}

// Format writes the resolution report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *ResolutionReport) error {
	sarifReport := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("siemcac", "https://github.com/siemcac/siemcac")
	v := version.Version
	run.Tool.Driver.Version = &v

	f.addRules(run, report.Diagnostics)
	f.addResults(run, report.Diagnostics)

	sarifReport.AddRun(run)

	if err := sarifReport.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

func (f *SARIFFormatter) addRules(run *sarif.Run, diags []entities.Diagnostic) {
	seen := make(map[string]bool)
	for _, d := range diags {
		code := d.Code
		if seen[code] {
			continue
		}
		seen[code] = true

		desc := ruleDescription(d.Code)
		rule := sarif.NewReportingDescriptor().WithID(code)
		rule.WithName(code)
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
		run.Tool.Driver.AddRule(rule)
	}
}

func (f *SARIFFormatter) addResults(run *sarif.Run, diags []entities.Diagnostic) {
	for _, d := range diags {
		result := sarif.NewRuleResult(d.Code)
		result.Level = mapSeverityToLevel(d.Severity)
		result.Message = sarif.NewTextMessage(d.String())
		if f.templatePath != "" {
			result.Locations = []*sarif.Location{
				sarif.NewLocation().WithPhysicalLocation(
					sarif.NewPhysicalLocation().WithArtifactLocation(
						sarif.NewSimpleArtifactLocation(f.templatePath),
					),
				),
			}
		}

		props := sarif.NewPropertyBag()
		if d.ResourceType != "" {
			props.Add("resourceType", d.ResourceType)
		}
		if d.ResourceName != "" {
			props.Add("resourceName", d.ResourceName)
		}
		if d.Field != "" {
			props.Add("field", d.Field)
		}
		result.WithProperties(props)

		run.AddResult(result)
	}
}

func mapSeverityToLevel(s entities.Severity) string {
	if s == entities.SeverityError {
		return "error"
	}
	return "warning"
}

func ruleDescription(code string) string {
	switch code {
	case entities.CodeSchemaViolation:
		return "A resolved resource violates its field specification"
	case entities.CodeUnresolvedReference:
		return "A resource references another resource that does not exist"
	case entities.CodeUnresolvedPlaceholder:
		return "A variable placeholder could not be resolved"
	case entities.CodeUnknownResourceType:
		return "A resource type is not recognized by the deployment API"
	default:
		return code
	}
}
