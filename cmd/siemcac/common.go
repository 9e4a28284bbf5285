package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/siemcac/siemcac/internal/application/dto"
	appservices "github.com/siemcac/siemcac/internal/application/services"
	"github.com/siemcac/siemcac/internal/domain/services"
	"github.com/siemcac/siemcac/internal/infrastructure/director"
	"github.com/siemcac/siemcac/internal/infrastructure/fleet"
	"github.com/siemcac/siemcac/internal/infrastructure/store"
	"github.com/siemcac/siemcac/internal/output"
)

func newResolveUseCase() (*appservices.ResolveUseCase, error) {
	templateStore, err := store.NewFilesystemStore(viper.GetString("templates.dir"))
	if err != nil {
		return nil, fmt.Errorf("initializing template store: %w", err)
	}
	return appservices.NewResolveUseCase(templateStore, services.OSEnv{}, slog.Default()), nil
}

func newPlanUseCase() (*appservices.PlanUseCase, *director.Client, error) {
	resolve, err := newResolveUseCase()
	if err != nil {
		return nil, nil, err
	}

	baseURL := viper.GetString("director.url")
	if baseURL == "" {
		return nil, nil, fmt.Errorf("director URL not configured (--director-url or director.url)")
	}
	client := director.NewClient(director.Config{
		BaseURL: baseURL,
		Token:   viper.GetString("director.token"),
	}, slog.Default())

	return appservices.NewPlanUseCase(resolve, fleet.NewLoader(), client, slog.Default()), client, nil
}

func requestMetadata() dto.RequestMetadata {
	return dto.RequestMetadata{RequestID: uuid.NewString()}
}

// openOutput returns the destination writer and a close function.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// writeResolution renders a resolution report in the requested format.
func writeResolution(w io.Writer, format, templateRef string, report *output.ResolutionReport) error {
	switch format {
	case "table":
		return output.NewTableFormatter(w).FormatResolution(report)
	case "json":
		return output.NewJSONFormatter(w, true).Format(report)
	case "yaml":
		return output.NewYAMLFormatter(w).Format(report)
	case "sarif":
		return output.NewSARIFFormatter(w, templateRef).Format(report)
	default:
		return fmt.Errorf("unknown format %q (expected table, json, yaml or sarif)", format)
	}
}

// writePlan renders a plan report in the requested format.
func writePlan(w io.Writer, format string, report *output.PlanReport) error {
	switch format {
	case "table":
		return output.NewTableFormatter(w).FormatPlan(report)
	case "json":
		return output.NewJSONFormatter(w, true).Format(report)
	case "yaml":
		return output.NewYAMLFormatter(w).Format(report)
	default:
		return fmt.Errorf("unknown format %q (expected table, json or yaml)", format)
	}
}

// parseVariables converts repeated key=value flags into a map.
func parseVariables(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q (expected name=value)", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
