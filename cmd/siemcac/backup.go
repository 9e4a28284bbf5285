package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siemcac/siemcac/internal/application/dto"
	appservices "github.com/siemcac/siemcac/internal/application/services"
	"github.com/siemcac/siemcac/internal/infrastructure/director"
	"github.com/siemcac/siemcac/internal/infrastructure/fleet"
)

var (
	backupSelector string
	backupDir      string
)

// backupCmd exports the live fleet configuration as template documents.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the live fleet configuration as templates",
	Long: `Fetch the configuration of every selected node and write it out as
template documents, one file per node. The exported files can be diffed
against the authored templates or re-imported after an incident.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringVar(&backupSelector, "select", "", "Node selector expression")
	backupCmd.Flags().StringVarP(&backupDir, "dir", "d", "backups", "Directory to write backups into")
}

func runBackup(cmd *cobra.Command) error {
	baseURL := viper.GetString("director.url")
	if baseURL == "" {
		return fmt.Errorf("director URL not configured (--director-url or director.url)")
	}
	client := director.NewClient(director.Config{
		BaseURL: baseURL,
		Token:   viper.GetString("director.token"),
	}, slog.Default())

	if err := client.Health(cmd.Context()); err != nil {
		return err
	}

	useCase := appservices.NewBackupUseCase(fleet.NewLoader(), client, slog.Default())
	resp, err := useCase.Execute(cmd.Context(), dto.BackupRequest{
		FleetPath: viper.GetString("fleet.file"),
		Selector:  backupSelector,
		OutputDir: backupDir,
		Metadata:  requestMetadata(),
	})
	if err != nil {
		return err
	}

	slog.Info("backup complete", "files", len(resp.Files), "dir", backupDir)
	return nil
}
