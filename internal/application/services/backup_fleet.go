package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/siemcac/siemcac/internal/application/dto"
	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/application/ports"
	"github.com/siemcac/siemcac/internal/domain/entities"
)

// BackupUseCase exports the live configuration of the selected nodes as
// template documents, one file per node, so a fleet can be re-imported
// or diffed later.
type BackupUseCase struct {
	fleet    ports.FleetProvider
	director ports.DirectorClient
	logger   *slog.Logger
}

// NewBackupUseCase creates a backup use case.
func NewBackupUseCase(fleet ports.FleetProvider, director ports.DirectorClient, logger *slog.Logger) *BackupUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupUseCase{fleet: fleet, director: director, logger: logger}
}

// Execute writes one template document per selected node into the
// output directory and returns the file paths.
func (uc *BackupUseCase) Execute(ctx context.Context, req dto.BackupRequest) (*dto.BackupResponse, error) {
	startTime := time.Now()

	fleet, err := uc.fleet.LoadFleet(req.FleetPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("fleet", "failed to load inventory", err)
	}
	nodes, err := SelectNodes(fleet, req.Selector)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return nil, apperrors.NewConfigurationError("backup", "failed to create output directory", err)
	}

	response := &dto.BackupResponse{}
	for _, node := range nodes {
		path, err := uc.backupNode(ctx, node, req.OutputDir)
		if err != nil {
			return nil, err
		}
		response.Files = append(response.Files, path)
		uc.logger.Info("node backed up", "node", node.Name, "file", path)
	}

	response.Metadata = dto.ResponseMetadata{
		RequestID:   req.Metadata.RequestID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(startTime),
	}
	return response, nil
}

func (uc *BackupUseCase) backupNode(ctx context.Context, node entities.Node, outputDir string) (string, error) {
	spec := make(map[string]any)
	for _, resourceType := range entities.ResourceTypes() {
		resources, err := uc.director.FetchConfiguration(ctx, node, resourceType)
		if err != nil {
			return "", apperrors.NewDeploymentError(node.Name, resourceType, "", err)
		}
		if len(resources) == 0 {
			continue
		}
		plain := make([]any, 0, len(resources))
		for _, r := range resources {
			fields := make(map[string]any, len(r))
			for key, v := range r {
				fields[key] = v.ToGo()
			}
			plain = append(plain, fields)
		}
		spec[resourceType] = plain
	}

	doc := map[string]any{
		"name":    fmt.Sprintf("backup-%s", node.Name),
		"version": time.Now().UTC().Format("2006.01.02"),
		"spec":    spec,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", apperrors.NewConfigurationError("backup", "failed to serialize "+node.Name, err)
	}

	path := filepath.Join(outputDir, node.Name+".yaml")
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", apperrors.NewConfigurationError("backup", "failed to write "+path, err)
	}
	return path, nil
}
