package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siemcac/siemcac/internal/application/dto"
	"github.com/siemcac/siemcac/internal/output"
)

var (
	planFormat   string
	planOutFile  string
	planSelector string
	planVars     []string
)

// planCmd shows the changes apply would perform, without touching any node.
var planCmd = &cobra.Command{
	Use:   "plan <template>",
	Short: "Show the changes needed to match the fleet to a template",
	Long: `Resolve the template, fetch the live configuration of every selected
node, and print the create/update/delete operations apply would perform.
Read-only: no mutating call is issued.

Node selection:
  --select "role == 'data_node'"            Only data nodes
  --select "tags.site in ['fra', 'ams']"    By inventory tag`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFormat, "format", "table", "Output format: table, json, yaml")
	planCmd.Flags().StringVarP(&planOutFile, "output", "o", "", "Output file path (default: stdout)")
	planCmd.Flags().StringVar(&planSelector, "select", "", "Node selector expression")
	planCmd.Flags().StringSliceVar(&planVars, "var", nil, "Variable override, name=value (repeatable)")
}

func runPlan(cmd *cobra.Command, templateRef string) error {
	useCase, _, err := newPlanUseCase()
	if err != nil {
		return err
	}

	vars, err := parseVariables(planVars)
	if err != nil {
		return err
	}

	resp, err := useCase.Execute(cmd.Context(), dto.PlanRequest{
		TemplateRef: templateRef,
		FleetPath:   viper.GetString("fleet.file"),
		Selector:    planSelector,
		Variables:   vars,
		Metadata:    requestMetadata(),
	})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(planOutFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := writePlan(w, planFormat, output.NewPlanReport(templateRef, resp)); err != nil {
		return err
	}

	if resp.Result.HasErrors() {
		return fmt.Errorf("%d validation error(s), plan incomplete", len(resp.Result.Errors()))
	}
	return nil
}
