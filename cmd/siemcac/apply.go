package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siemcac/siemcac/internal/application/dto"
	appservices "github.com/siemcac/siemcac/internal/application/services"
	"github.com/siemcac/siemcac/internal/output"
)

var (
	applySelector    string
	applyVars        []string
	applyDryRun      bool
	applyYes         bool
	applyParallelism int
)

// applyCmd executes a plan against the fleet.
var applyCmd = &cobra.Command{
	Use:   "apply <template>",
	Short: "Apply a template to the selected nodes",
	Long: `Resolve and validate the template, plan the changes against the live
fleet, and execute them node by node in deployment order. Nothing is
applied while the document carries validation errors. The plan is shown
and confirmed interactively unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applySelector, "select", "", "Node selector expression")
	applyCmd.Flags().StringSliceVar(&applyVars, "var", nil, "Variable override, name=value (repeatable)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Plan only, apply nothing")
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "Skip the interactive confirmation")
	applyCmd.Flags().IntVar(&applyParallelism, "parallelism", appservices.DefaultParallelism, "Concurrent node deployments")
}

func runApply(cmd *cobra.Command, templateRef string) error {
	planUseCase, client, err := newPlanUseCase()
	if err != nil {
		return err
	}

	vars, err := parseVariables(applyVars)
	if err != nil {
		return err
	}
	fleetPath := viper.GetString("fleet.file")

	planned, err := planUseCase.Execute(cmd.Context(), dto.PlanRequest{
		TemplateRef: templateRef,
		FleetPath:   fleetPath,
		Selector:    applySelector,
		Variables:   vars,
		Metadata:    requestMetadata(),
	})
	if err != nil {
		return err
	}

	if err := output.NewTableFormatter(os.Stdout).FormatPlan(output.NewPlanReport(templateRef, planned)); err != nil {
		return err
	}
	if planned.Result.HasErrors() {
		return fmt.Errorf("%d validation error(s), refusing to apply", len(planned.Result.Errors()))
	}
	if len(planned.Changes) == 0 {
		return nil
	}

	if !applyYes && !applyDryRun {
		confirmed, err := confirmApply(len(planned.Changes))
		if err != nil {
			return err
		}
		if !confirmed {
			slog.Info("apply cancelled")
			return nil
		}
	}

	if !applyDryRun {
		if err := client.Health(cmd.Context()); err != nil {
			return err
		}
	}

	applyUseCase := appservices.NewApplyUseCase(planUseCase, client, slog.Default())
	resp, err := applyUseCase.Execute(cmd.Context(), dto.ApplyRequest{
		TemplateRef: templateRef,
		FleetPath:   fleetPath,
		Selector:    applySelector,
		Variables:   vars,
		DryRun:      applyDryRun,
		Parallelism: applyParallelism,
		Metadata:    requestMetadata(),
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, outcome := range resp.Outcomes {
		if outcome.Error != "" {
			failed++
			fmt.Fprintf(os.Stderr, "node %s: %s\n", outcome.Node, outcome.Error)
		}
	}
	if failed > 0 {
		return fmt.Errorf("apply run %s: %d node(s) failed", resp.RunID, failed)
	}

	slog.Info("apply complete", "run_id", resp.RunID, "nodes", len(resp.Outcomes))
	return nil
}

func confirmApply(changes int) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Apply %d change(s) to the fleet?", changes)).
		Affirmative("Apply").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return confirmed, nil
}
