package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siemcac/siemcac/internal/application/dto"
	"github.com/siemcac/siemcac/internal/output"
)

var (
	driftFormat   string
	driftOutFile  string
	driftSelector string
	driftVars     []string
)

// driftCmd reports divergence between the fleet and a template. It is a
// plan with inverted exit semantics: any difference is a failure, which
// makes it usable as a scheduled check.
var driftCmd = &cobra.Command{
	Use:   "drift <template>",
	Short: "Detect configuration drift against a template",
	Long: `Compare the live configuration of the selected nodes with the
resolved template. Exits non-zero when any node diverges, so the command
can run as a scheduled conformance check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDrift(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(driftCmd)

	driftCmd.Flags().StringVar(&driftFormat, "format", "table", "Output format: table, json, yaml")
	driftCmd.Flags().StringVarP(&driftOutFile, "output", "o", "", "Output file path (default: stdout)")
	driftCmd.Flags().StringVar(&driftSelector, "select", "", "Node selector expression")
	driftCmd.Flags().StringSliceVar(&driftVars, "var", nil, "Variable override, name=value (repeatable)")
}

func runDrift(cmd *cobra.Command, templateRef string) error {
	useCase, _, err := newPlanUseCase()
	if err != nil {
		return err
	}

	vars, err := parseVariables(driftVars)
	if err != nil {
		return err
	}

	resp, err := useCase.Execute(cmd.Context(), dto.PlanRequest{
		TemplateRef: templateRef,
		FleetPath:   viper.GetString("fleet.file"),
		Selector:    driftSelector,
		Variables:   vars,
		Metadata:    requestMetadata(),
	})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(driftOutFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := writePlan(w, driftFormat, output.NewPlanReport(templateRef, resp)); err != nil {
		return err
	}

	if resp.Result.HasErrors() {
		return fmt.Errorf("%d validation error(s)", len(resp.Result.Errors()))
	}
	if len(resp.Changes) > 0 {
		return fmt.Errorf("drift detected: %d divergence(s)", len(resp.Changes))
	}
	return nil
}
