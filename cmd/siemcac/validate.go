package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/siemcac/siemcac/internal/application/dto"
	"github.com/siemcac/siemcac/internal/output"
)

var (
	validateFormat  string
	validateOutFile string
	validateVars    []string
)

// validateCmd resolves a template and reports the validation findings.
var validateCmd = &cobra.Command{
	Use:   "validate <template>",
	Short: "Resolve a template chain and validate the result",
	Long: `Resolve the template's inheritance chain into one configuration
document, substitute variables, and run the cross-reference and schema
validators. Exits non-zero when any error-grade diagnostic is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFormat, "format", "table", "Output format: table, json, yaml, sarif")
	validateCmd.Flags().StringVarP(&validateOutFile, "output", "o", "", "Output file path (default: stdout)")
	validateCmd.Flags().StringSliceVar(&validateVars, "var", nil, "Variable override, name=value (repeatable)")
}

func runValidate(cmd *cobra.Command, templateRef string) error {
	useCase, err := newResolveUseCase()
	if err != nil {
		return err
	}

	vars, err := parseVariables(validateVars)
	if err != nil {
		return err
	}

	resp, err := useCase.Execute(cmd.Context(), dto.ResolveRequest{
		TemplateRef: templateRef,
		Variables:   vars,
		Metadata:    requestMetadata(),
	})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(validateOutFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	report := output.NewResolutionReport(templateRef, resp)
	if err := writeResolution(w, validateFormat, templateRef, report); err != nil {
		return err
	}

	if resp.Result.HasErrors() {
		return fmt.Errorf("%d validation error(s)", len(resp.Result.Errors()))
	}
	slog.Info("validation passed", "template", templateRef, "warnings", len(resp.Result.Warnings()))
	return nil
}
